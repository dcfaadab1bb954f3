package handlers

// Aliases exposing unexported identifiers to the external test package.
var (
	InsertBooking    = insertBooking
	ErrAlreadyBooked = errAlreadyBooked
)
