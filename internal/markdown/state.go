package markdown

// TocEntry is one row in a rendered document's table of contents.
type TocEntry struct {
	Level int
	Title string
	ID    string
}

// RenderResult is the markdown renderer's output.
type RenderResult struct {
	HTML     string
	Title    string // "" if no H1 was found
	TOC      []TocEntry
	Warnings []string
}

// tableState tracks whether the walk is currently inside a table header
// row, the only per-table state renderTableCell needs: cell alignment
// itself comes straight off each *east.TableCell node, which the table
// extension's parser already resolves per cell.
type tableState struct {
	inHead bool
}

// headingState tracks the document-wide heading bookkeeping: the id
// allocator backing slug collisions, the accumulated TOC, and whether the
// first H1 has already been captured as the document title. dropping
// records the per-heading decision made on entering so the matching exit
// call (which always fires, even after WalkSkipChildren) knows whether to
// emit a closing tag.
type headingState struct {
	titleCaptured bool
	ids           *idAllocator
	toc           []TocEntry
	title         string
	dropping      bool
}

func newHeadingState() *headingState {
	return &headingState{ids: newIDAllocator()}
}

// endFor allocates a collision-free id, records the TOC entry, and
// captures the document title on the first H1. It returns the id and
// whether this heading is the captured title (only ever true once, for
// level-1). Called on entering, before any output is written, since the
// plain text is gathered up front rather than accumulated through the walk.
func (s *headingState) endFor(text string, level int) (id string, isTitle bool) {
	id = s.ids.allocate(Slugify(text))
	s.toc = append(s.toc, TocEntry{Level: level, Title: text, ID: id})
	if level == 1 && !s.titleCaptured {
		s.titleCaptured = true
		s.title = text
		isTitle = true
	}
	return id, isTitle
}
