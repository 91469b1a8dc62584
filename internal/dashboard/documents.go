package dashboard

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"botdash/internal/audit"
)

// SizeLabel formats a byte count as megabytes with one decimal.
func SizeLabel(size int64) string {
	return fmt.Sprintf("%.1f MB", float64(size)/1024/1024)
}

func (c *Controller) LoadPDFs(ctx context.Context) error {
	docs, err := c.api.ListPDFs(ctx)
	if err != nil {
		return c.failed("list pdfs", err)
	}
	if docs == nil {
		c.logger.Debug("pdf list response was null, keeping current list")
		return nil
	}
	c.state.setDocuments(docs)

	cards := make([]DocumentCard, 0, len(docs))
	for _, d := range docs {
		cards = append(cards, DocumentCard{Name: d.Name, Path: d.Path, SizeLabel: SizeLabel(d.Size), Modified: d.Modified})
	}
	c.render.Documents(cards)
	return nil
}

// SelectPDF sets the local file UploadPDF will send.
func (c *Controller) SelectPDF(path string) {
	c.state.SelectFile(path)
}

// UploadPDF sends the selected file. Without a selection nothing is sent.
func (c *Controller) UploadPDF(ctx context.Context) error {
	path := c.state.SelectedFile()
	if path == "" {
		c.notes.Error("Please select a file")
		return ErrNoFile
	}

	f, err := os.Open(path)
	if err != nil {
		c.notes.Error("Upload failed: " + err.Error())
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fields := map[string]any{"target": path}
	if pages, ok := pageCount(path); ok {
		fields["pages"] = pages
		c.logger.Debug("uploading pdf", zap.String("path", path), zap.Int("pages", pages))
	}

	res, err := c.api.UploadPDF(ctx, path, f)
	if err != nil {
		c.logger.Error("pdf upload failed", zap.String("path", path), zap.Error(err))
		fields["outcome"], fields["error"] = audit.OutcomeFailed, err.Error()
		c.record(ctx, audit.EventPDFUpload, fields)
		c.notes.Error("Upload failed: " + errorText(err))
		return err
	}
	fields["outcome"], fields["message"] = outcome(res), res.Message
	c.record(ctx, audit.EventPDFUpload, fields)
	if !res.OK() {
		msg := res.Message
		if msg == "" {
			msg = "Upload failed"
		}
		c.notes.Error(msg)
		return &RejectedError{Op: "upload pdf", Message: res.Message}
	}
	c.notes.Success("PDF uploaded successfully!")
	c.state.SelectFile("")
	return c.LoadPDFs(ctx)
}

// DeletePDF removes the document stored at path after confirmation.
func (c *Controller) DeletePDF(ctx context.Context, path string) error {
	if !c.confirm.Confirm("Are you sure you want to delete this PDF?") {
		return ErrDeclined
	}
	res, err := c.api.DeletePDF(ctx, path)
	if err != nil {
		c.record(ctx, audit.EventPDFDelete, map[string]any{"target": path, "outcome": audit.OutcomeFailed, "error": err.Error()})
		return c.failed("delete pdf", err)
	}
	c.record(ctx, audit.EventPDFDelete, map[string]any{"target": path, "outcome": outcome(res), "message": res.Message})
	if !res.OK() {
		return &RejectedError{Op: "delete pdf", Message: res.Message}
	}
	c.notes.Success("PDF deleted successfully!")
	return c.LoadPDFs(ctx)
}

// pageCount reports the page count of a local PDF. The server decides what
// it accepts, so files that do not parse are still uploaded.
func pageCount(path string) (n int, ok bool) {
	defer func() {
		if recover() != nil {
			n, ok = 0, false
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()
	return r.NumPage(), true
}
