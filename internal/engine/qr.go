package engine

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// StructureURL is the RCSB page of a structure.
func StructureURL(id string) string {
	return "https://www.rcsb.org/structure/" + strings.ToUpper(id)
}

func qrName(id string) string {
	return fmt.Sprintf("protein_%s_qr.png", strings.ToLower(id))
}

// WriteQRCode saves a PNG QR code that links to the structure page.
func WriteQRCode(id, path string) error {
	q, err := qrcode.New(StructureURL(id), qrcode.Medium)
	if err != nil {
		return fmt.Errorf("ошибка генерации QR-кода: %w", err)
	}
	return q.WriteFile(qrSize, path)
}
