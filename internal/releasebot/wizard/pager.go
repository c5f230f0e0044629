package wizard

// Pager: 1 기반 페이지 커서. 현재 페이지는 항상 [1, Max] 범위다. (Max 가 0 이면 1)
type Pager struct {
	Page int
	Max  int
}

// Clamp: 범위를 벗어난 페이지를 경계로 맞춘다.
func (p Pager) Clamp() Pager {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Max > 0 && p.Page > p.Max {
		p.Page = p.Max
	}
	return p
}

// Next: 마지막 페이지에서는 그대로다.
func (p Pager) Next() Pager {
	if p.HasNext() {
		p.Page++
	}
	return p.Clamp()
}

// Previous: 첫 페이지에서는 그대로다.
func (p Pager) Previous() Pager {
	if p.HasPrevious() {
		p.Page--
	}
	return p.Clamp()
}

// HasNext: 다음 페이지 존재 여부
func (p Pager) HasNext() bool { return p.Page < p.Max }

// HasPrevious: 이전 페이지 존재 여부
func (p Pager) HasPrevious() bool { return p.Page > 1 }

// PageCount: 항목 수와 페이지 크기로 전체 페이지 수를 계산한다.
func PageCount(items int, pageSize int) int {
	if items <= 0 {
		return 0
	}
	if pageSize <= 1 {
		return items
	}
	return (items + pageSize - 1) / pageSize
}
