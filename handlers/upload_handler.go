package handlers

import (
	"net/url"
	"strconv"
	"time"

	config "github.com/studysphere/study_sphere/configs"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
)

// GenerateUploadSignature creates a secure signature for a frontend upload.
// The client sends the binary straight to Cloudinary; only the resulting URL
// ever reaches this service.
func GenerateUploadSignature(c *fiber.Ctx) error {
	cloudinaryURL := config.Config("CLOUDINARY_URL")
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to initialize Cloudinary")
	}

	parsedURL, err := url.Parse(cloudinaryURL)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to parse Cloudinary URL")
	}
	secret, _ := parsedURL.User.Password()

	paramsToSign, err := api.StructToParams(uploader.UploadParams{
		Folder: "study_sphere_materials",
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to prepare signature params")
	}

	timestamp := time.Now().Unix()
	paramsToSign.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(paramsToSign, secret)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to sign upload params")
	}

	apiKey := cld.Config.Cloud.APIKey

	return c.JSON(fiber.Map{
		"signature": signature,
		"timestamp": timestamp,
		"api_key":   apiKey,
		"folder":    "study_sphere_materials",
	})
}
