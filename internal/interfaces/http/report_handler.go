package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/branchdesk/branchdesk-api/internal/application/reports"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// ReportHandler serves the downloadable documents.
type ReportHandler struct {
	uc  *reports.ReportUseCase
	log *logger.Logger
}

// NewReportHandler builds the report handler.
func NewReportHandler(uc *reports.ReportUseCase, log *logger.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, log: log.Component("http.reports")}
}

// Receipt godoc
// @Summary      Printable complaint receipt
// @Tags         reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path  int  true  "complaint id"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/complaints/{id}/receipt.pdf [get]
func (h *ReportHandler) Receipt(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	doc, err := h.uc.ComplaintReceipt(c.UserContext(), GetPrincipal(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendDocument(c, doc, false)
}

// ComplaintCSV godoc
// @Summary      Complaints of a branch as CSV, archived included
// @Tags         reports
// @Produce      text/csv
// @Security     BearerAuth
// @Param        id        path   int     true   "branch id"
// @Param        encoding  query  string  false  "utf-8 (default) or cp1250"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/branches/{id}/complaints/export.csv [get]
func (h *ReportHandler) ComplaintCSV(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	enc, ok := reports.ParseEncoding(c.Query("encoding"))
	if !ok {
		return writeError(c, h.log, domain.Invalid("encoding", "use utf-8 or cp1250"))
	}
	doc, err := h.uc.ComplaintCSV(c.UserContext(), GetPrincipal(c), id, enc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendDocument(c, doc, true)
}

// Workbook godoc
// @Summary      All orders and complaints as an Excel workbook
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Router       /api/admin/export.xlsx [get]
func (h *ReportHandler) Workbook(c *fiber.Ctx) error {
	doc, err := h.uc.Workbook(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendDocument(c, doc, true)
}

func sendDocument(c *fiber.Ctx, doc *reports.Document, attachment bool) error {
	if attachment {
		c.Attachment(doc.Filename)
	} else {
		c.Set(fiber.HeaderContentDisposition, `inline; filename="`+doc.Filename+`"`)
	}
	// after Attachment, which guesses the type from the extension
	c.Set(fiber.HeaderContentType, doc.ContentType)
	return c.Send(doc.Body)
}
