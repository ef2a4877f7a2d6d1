package utils

import (
	"math/rand"
	"time"

	"github.com/campusnorma/campus_norma/models"
	"gorm.io/gorm"
)

const serialLength = 10
const serialBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCertificateSerial returns a serial number not yet present on any
// certificate row.
func GenerateCertificateSerial(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, serialLength)
		for i := range b {
			b[i] = serialBytes[seededRand.Intn(len(serialBytes))]
		}
		serial := string(b)

		var certificate models.Certificate
		err := tx.Where("serial_number = ?", serial).First(&certificate).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return serial, nil
			}
			return "", err
		}
	}
}
