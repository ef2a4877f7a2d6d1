package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	config "github.com/campusnorma/campus_norma/configs"
	"github.com/campusnorma/campus_norma/database"
	"github.com/campusnorma/campus_norma/models"
	"github.com/campusnorma/campus_norma/utils"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// GenerateCourseCertificate renders and stores a completion certificate once a
// student finishes a course. Safe to call repeatedly; one certificate exists
// per (student, course).
func GenerateCourseCertificate(studentID, courseID uuid.UUID) {
	var existing models.Certificate
	if err := database.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&existing).Error; err == nil {
		return
	}

	var student models.User
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		log.Printf("🔥 Certificate: student %s not found: %v", studentID, err)
		return
	}
	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		log.Printf("🔥 Certificate: course %s not found: %v", courseID, err)
		return
	}

	serial, err := utils.GenerateCertificateSerial(database.DB)
	if err != nil {
		log.Printf("🔥 Failed to generate certificate serial: %v", err)
		return
	}

	htmlData, err := renderCertificateHTML(student.FullName, course.Title, serial)
	if err != nil {
		log.Printf("🔥 Failed to render certificate HTML: %v", err)
		return
	}

	pdfBytes, err := printCertificatePDF(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate certificate PDF: %v", err)
		return
	}

	uploadURL, err := uploadCertificate(pdfBytes, studentID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload certificate: %v", err)
		return
	}

	certificate := models.Certificate{
		StudentID:      studentID,
		CourseID:       courseID,
		CourseTitle:    course.Title,
		SerialNumber:   serial,
		CompletionDate: time.Now(),
		CertificateURL: uploadURL,
	}
	if err := database.DB.Create(&certificate).Error; err != nil {
		log.Printf("🔥 Failed to create certificate record for student %s: %v", studentID, err)
		return
	}
	log.Printf("✅ Generated certificate %s for student %s (%s)", serial, studentID, course.Title)
}

func renderCertificateHTML(studentName, courseTitle, serial string) (string, error) {
	tmpl, err := template.ParseFiles("templates/certificate.html")
	if err != nil {
		return "", err
	}

	data := struct {
		StudentName    string
		CourseTitle    string
		SerialNumber   string
		CompletionDate string
	}{
		StudentName:    studentName,
		CourseTitle:    courseTitle,
		SerialNumber:   serial,
		CompletionDate: time.Now().Format("January 2, 2006"),
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func printCertificatePDF(htmlContent string) ([]byte, error) {
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

func uploadCertificate(fileBytes []byte, studentID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("certificates/%s_%s", studentID, uuid.New().String()),
		Folder:       "campus_norma_certificates",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}
	return uploadResult.SecureURL, nil
}
