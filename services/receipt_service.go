package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/studysphere/study_sphere/configs"
	"github.com/studysphere/study_sphere/database"
	"github.com/studysphere/study_sphere/models"
)

// GenerateBookingReceipt renders a PDF receipt for a paid booking, uploads it
// and stores the URL on the booking. Runs detached from the request; a failure
// only costs the student the receipt link, never the booking.
func GenerateBookingReceipt(bookingID uuid.UUID) {
	var booking models.Booking
	if err := database.DB.Preload("Session").First(&booking, "id = ?", bookingID).Error; err != nil {
		log.Printf("🔥 Receipt: booking %s not found: %v", bookingID, err)
		return
	}

	var student models.User
	if err := database.DB.Where("email = ?", booking.StudentEmail).First(&student).Error; err != nil {
		log.Printf("🔥 Receipt: student %s not found: %v", booking.StudentEmail, err)
		return
	}

	htmlData, err := generateReceiptHTML(student.FullName, booking.Session)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate PDF: %v", err)
		return
	}

	uploadURL, err := uploadToCloudinary(pdfBytes, booking.ID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload receipt to Cloudinary: %v", err)
		return
	}

	if err := database.DB.Model(&booking).Update("receipt_url", uploadURL).Error; err != nil {
		log.Printf("🔥 Failed to store receipt URL for booking %s: %v", booking.ID, err)
		return
	}
	log.Printf("✅ Generated receipt for booking %s.", booking.ID)
}

func generateReceiptHTML(studentName string, session models.StudySession) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	data := struct {
		StudentName  string
		SessionTitle string
		TutorName    string
		Fee          string
		IssuedAt     string
	}{
		StudentName:  studentName,
		SessionTitle: session.Title,
		TutorName:    session.TutorName,
		Fee:          fmt.Sprintf("$%.2f", session.Fee),
		IssuedAt:     time.Now().Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(fileBytes []byte, bookingID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", bookingID, uuid.New().String()),
		Folder:       "study_sphere_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
