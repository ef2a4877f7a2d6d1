package handlers

import (
	"errors"
	"log"

	"github.com/campusnorma/campus_norma/database"
	"github.com/campusnorma/campus_norma/models"
	"github.com/campusnorma/campus_norma/notifications"
	"github.com/campusnorma/campus_norma/payments"
	"github.com/campusnorma/campus_norma/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRequest struct {
	CourseID string `json:"course_id" validate:"required,uuid4"`
}

// InitiatePayment opens a pending payment record for a priced course and
// creates the matching PayPal order.
func InitiatePayment(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var course models.Course
	if err := database.DB.Where("id = ? AND is_published = ?", req.CourseID, true).First(&course).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	if course.IsFree() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Course is free, enroll directly"})
	}

	var existing models.Enrollment
	if err := database.DB.Where("student_id = ? AND course_id = ?", studentID, course.ID).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      "You are already enrolled in this course",
			"enrollment": existing,
		})
	}

	payment := models.Payment{
		StudentID: studentID,
		CourseID:  course.ID,
		Amount:    course.Price,
		Currency:  "USD",
		Provider:  "paypal",
		Status:    models.PaymentStatusPending,
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment"})
	}

	order, err := payments.CreatePayPalOrder(payment.Amount, payment.Currency)
	if err != nil {
		log.Printf("🔥 PayPal CreateOrder API call failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create PayPal order"})
	}

	payment.ProviderOrderID = &order.ID
	if err := database.DB.Save(&payment).Error; err != nil {
		log.Printf("🔥 Failed to save ProviderOrderID: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update payment record"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment": payment,
		"orderID": order.ID,
	})
}

// CapturePayPalOrderHandler confirms the purchase after the student approves
// it on PayPal. Replays on an already-succeeded payment are acknowledged
// without side effects.
func CapturePayPalOrderHandler(c *fiber.Ctx) error {
	type CaptureRequest struct {
		OrderID string `json:"orderID" validate:"required"`
	}
	var req CaptureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var payment models.Payment
	if err := database.DB.Where("provider_order_id = ?", req.OrderID).First(&payment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment record not found for this order"})
	}

	if payment.Status == models.PaymentStatusSucceeded {
		return c.JSON(fiber.Map{"status": "success", "message": "Payment already captured"})
	}

	capturedOrder, err := payments.CapturePayPalOrder(req.OrderID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if capturedOrder.Status != "COMPLETED" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Order not completed on PayPal's end"})
	}

	if err := finalizePayment(&payment, &capturedOrder.ID); err != nil {
		log.Printf("🔥 CRITICAL: Error finalizing payment %s: %v", payment.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to finalize purchase"})
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Payment captured and enrollment confirmed"})
}

// HandlePaymentWebhook processes provider callbacks. It is idempotent: a
// webhook for an already-succeeded payment is acknowledged and ignored.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	type webhookPayload struct {
		PaymentID  string `json:"payment_id" validate:"required,uuid4"`
		ResultCode int    `json:"result_code"`
		TxnID      string `json:"txn_id"`
	}
	var payload webhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}
	if err := validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	log.Printf("Received payment webhook for %s, result code %d", payload.PaymentID, payload.ResultCode)

	var payment models.Payment
	if err := database.DB.Where("id = ?", payload.PaymentID).First(&payment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment record not found"})
	}

	if payment.Status == models.PaymentStatusSucceeded {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Webhook already processed"})
	}

	if payload.ResultCode != 0 {
		payment.Status = models.PaymentStatusFailed
		database.DB.Save(&payment)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Acknowledged failed payment"})
	}

	var txnID *string
	if payload.TxnID != "" {
		txnID = &payload.TxnID
	}
	if err := finalizePayment(&payment, txnID); err != nil {
		log.Printf("🔥 CRITICAL: Error processing successful webhook for payment %s: %v", payment.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Webhook processed successfully"})
}

// finalizePayment marks the payment succeeded and creates the enrollment in
// one transaction, then fires the notification and confirmation email.
func finalizePayment(payment *models.Payment, providerTxnID *string) error {
	var student models.User
	var course models.Course

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		payment.Status = models.PaymentStatusSucceeded
		payment.ProviderTxnID = providerTxnID
		if err := tx.Save(payment).Error; err != nil {
			return err
		}

		if err := tx.First(&student, "id = ?", payment.StudentID).Error; err != nil {
			return err
		}
		if err := tx.First(&course, "id = ?", payment.CourseID).Error; err != nil {
			return err
		}

		var existing models.Enrollment
		err := tx.Where("student_id = ? AND course_id = ?", payment.StudentID, payment.CourseID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			enrollment := models.Enrollment{StudentID: payment.StudentID, CourseID: payment.CourseID}
			return tx.Create(&enrollment).Error
		}
		return err
	})
	if err != nil {
		return err
	}

	if err := services.Notifications.NotifyPaymentApproved(payment.StudentID, payment, course.Title); err != nil {
		log.Printf("🔥 Failed to notify student %s of payment: %v", payment.StudentID, err)
	}
	go notifications.SendEmail(student.FullName, student.Email, "Payment Confirmed!", "<h1>Payment Confirmed</h1><p>Your payment was successful and you are now enrolled in <strong>"+course.Title+"</strong>. Happy learning!</p>")

	return nil
}

// MyPayments lists the caller's payment history, newest first.
func MyPayments(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var list []models.Payment
	if err := database.DB.Preload("Course").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payments"})
	}
	return c.JSON(list)
}

// GetPayment returns a single payment. Students see only their own records.
func GetPayment(c *fiber.Ctx) error {
	paymentID := c.Params("paymentId")
	if _, err := uuid.Parse(paymentID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	var payment models.Payment
	if err := database.DB.Preload("Course").First(&payment, "id = ?", paymentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}
	if currentRole(c) != models.RoleAdmin && payment.StudentID != currentUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}
	return c.JSON(payment)
}
