package handler

import (
	"time"

	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// listQuery carries the query parameters shared by list endpoints. IDs and
// dates stay strings here and are parsed by the handler.
type listQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1"`
}

func (q listQuery) pagination() dto.Pagination {
	return dto.NormalizePagination(q.Page, q.PageSize)
}

func (q listQuery) dates() (*time.Time, *time.Time, error) {
	start, err := optionalDate(q.StartDate)
	if err != nil {
		return nil, nil, err
	}
	end, err := optionalDate(q.EndDate)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func optionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
