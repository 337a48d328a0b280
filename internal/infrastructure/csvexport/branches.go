package csvexport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/application/reports"
	"github.com/branchdesk/branchdesk-api/pkg/textnorm"
)

// ReadBranches parses "name;address;company" rows. Address and company may be
// missing. A first row whose first cell reads name or Název is skipped as a
// header, and a leading UTF-8 BOM is ignored.
func ReadBranches(r io.Reader, enc reports.Encoding) ([]dto.BranchRequest, error) {
	if enc == reports.CP1250 {
		r = textnorm.CP1250Reader(r)
	}
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && string(head) == bom {
		_, _ = br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []dto.BranchRequest
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("csv: branches line %d: %w", line, err)
		}
		if line == 1 && isHeader(rec[0]) {
			continue
		}
		if strings.TrimSpace(rec[0]) == "" {
			continue
		}
		out = append(out, dto.BranchRequest{Name: rec[0], Address: cell(rec, 1), Company: cell(rec, 2)})
	}
}

func isHeader(first string) bool {
	return textnorm.EqualFold(first, "name") || textnorm.EqualFold(first, "Název")
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
