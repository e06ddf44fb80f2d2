package models

const (
	minPageSize = 1
	maxPageSize = 100
)

// CheckinPage is an offset-paged slice of a user's check-in history.
type CheckinPage struct {
	PageNum  int              `json:"page_num"`
	PageSize int              `json:"page_size"`
	Total    int64            `json:"total"`
	Records  []*CheckinRecord `json:"records"`
}

// Bad paging input is corrected, never rejected.
func clampPageNum(pageNum int) int {
	if pageNum < 1 {
		return 1
	}
	return pageNum
}

func clampPageSize(pageSize int) int {
	if pageSize < minPageSize {
		return minPageSize
	}
	if pageSize > maxPageSize {
		return maxPageSize
	}
	return pageSize
}
