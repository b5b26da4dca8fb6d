package board

// Pager tracks the requested page of a list. Pages are 1-based.
type Pager struct {
	Page    int
	PerPage int
}

// Clamp keeps Page within [1, pageTotal]. An empty result set leaves the
// pager on page 1.
func (p *Pager) Clamp(pageTotal int) bool {
	want := p.Page
	if want > pageTotal {
		want = pageTotal
	}
	if want < 1 {
		want = 1
	}
	changed := want != p.Page
	p.Page = want
	return changed
}

// AfterDelete steps back one page when the deleted row was the only one
// on a page past the first.
func (p *Pager) AfterDelete(itemsOnPage int) bool {
	if itemsOnPage <= 1 && p.Page > 1 {
		p.Page--
		return true
	}
	return false
}
