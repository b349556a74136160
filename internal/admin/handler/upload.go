package handler

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/attendly/attendance-backend/internal/admin/spreadsheet"
	"github.com/attendly/attendance-backend/pkg/errors"
	"github.com/attendly/attendance-backend/pkg/httputil"
)

const multipartMemory = 8 << 20

// RowsRequest is the JSON alternative to a workbook upload
type RowsRequest struct {
	Rows []map[string]any `json:"rows"`
}

// readRows accepts either a multipart upload in the "file" field or a JSON
// body of already parsed rows.
func readRows(r *http.Request, maxRows int) ([]spreadsheet.Row, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req RowsRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			return nil, err
		}
		if maxRows > 0 && len(req.Rows) > maxRows {
			return nil, errors.TooLarge("too many rows")
		}
		rows := make([]spreadsheet.Row, 0, len(req.Rows))
		for _, row := range req.Rows {
			rows = append(rows, spreadsheet.Row(row))
		}
		return rows, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.TooLarge("upload exceeds the size limit")
		}
		return nil, errors.BadRequest("expected a multipart upload with a file field")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.BadRequest("file is required")
	}
	defer file.Close()

	return spreadsheet.ReadRows(file, header.Filename, maxRows)
}

func sendTemplate(w http.ResponseWriter, t spreadsheet.Template) {
	data, err := t.XLSX()
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Attachment(w, t.Filename, spreadsheet.ContentTypeXLSX, data)
}
