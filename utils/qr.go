package utils

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 512

// QRCodePNG sinh ảnh PNG mã QR cho url.
func QRCodePNG(url string) ([]byte, error) {
	return qrcode.Encode(url, qrcode.Medium, qrImageSize)
}

// WriteQRPDF ghi ra một trang A4 để in: tiêu đề form, mã QR và đường link.
func WriteQRPDF(w io.Writer, title, url string) error {
	png, err := QRCodePNG(url)
	if err != nil {
		return fmt.Errorf("qr encode: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetY(30)
	pdf.MultiCell(contentW, 11, tr(title), "", "C", false)

	pdf.SetFont("Helvetica", "", 13)
	pdf.Ln(4)
	pdf.CellFormat(contentW, 8, tr("Quét mã để trả lời khảo sát"), "", 1, "C", false, 0, "")

	const qrSize = 120.0
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("qr", (pageW-qrSize)/2, pdf.GetY()+8, qrSize, qrSize, false, opts, 0, "")

	pdf.SetY(pdf.GetY() + qrSize + 16)
	pdf.SetFont("Courier", "", 11)
	pdf.CellFormat(contentW, 8, url, "", 1, "C", false, 0, url)

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
