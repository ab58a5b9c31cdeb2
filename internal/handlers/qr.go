package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	util "github.com/christophrus/rummikub-tracker/internal/util"
)

// QRHandler renders the share URL as a QR code so other devices at the
// table can open the tracker without typing an address.
func (e *Env) QRHandler(c *gin.Context) {
	url := e.shareURL(c)
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		util.LogWarn("Failed to encode QR code for %s: %v", url, err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
