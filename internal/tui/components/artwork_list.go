package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/atelier/internal/domain"
	"github.com/mmcdole/atelier/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// Layout constants for the list
const (
	BorderWidth  = 2
	BorderHeight = 2
	HeaderLines  = 1
	FilterLines  = 1
)

// ArtworkList is a scrollable, filterable list of artworks with favorite
// markers.
type ArtworkList struct {
	title     string
	items     []domain.Artwork
	favorites map[domain.FavoriteID]bool
	emptyText string

	cursor int
	offset int

	width   int
	height  int
	focused bool

	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into items, nil when unfiltered
}

// NewArtworkList creates an empty list with the given title
func NewArtworkList(title string) *ArtworkList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &ArtworkList{
		title:       title,
		favorites:   map[domain.FavoriteID]bool{},
		emptyText:   "Nothing here yet",
		filterInput: ti,
		focused:     true,
	}
}

// SetTitle changes the header text
func (l *ArtworkList) SetTitle(title string) { l.title = title }

// SetEmptyText sets the message shown when the list has no rows
func (l *ArtworkList) SetEmptyText(text string) { l.emptyText = text }

// SetItems replaces the rows, keeping the cursor on the same artwork when
// it is still present
func (l *ArtworkList) SetItems(items []domain.Artwork) {
	selected, hadSelection := l.Selected()
	l.items = items
	l.applyFilter()

	if hadSelection {
		for i := 0; i < l.Len(); i++ {
			if l.at(i).ID == selected.ID {
				l.cursor = i
				l.ensureVisible()
				return
			}
		}
	}
	l.clampCursor()
}

// SetFavorites marks which rows carry the favorite marker
func (l *ArtworkList) SetFavorites(ids domain.FavoriteSet) {
	l.favorites = make(map[domain.FavoriteID]bool, len(ids))
	for _, id := range ids {
		l.favorites[id] = true
	}
}

// SetSize sets the outer dimensions including the border
func (l *ArtworkList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.filterInput.Width = max(width-BorderWidth-4, 1)
	l.ensureVisible()
}

// SetFocused toggles the active border
func (l *ArtworkList) SetFocused(focused bool) { l.focused = focused }

// Len returns the number of visible rows
func (l *ArtworkList) Len() int {
	if l.filteredIdx != nil {
		return len(l.filteredIdx)
	}
	return len(l.items)
}

// Cursor returns the selected row index among visible rows
func (l *ArtworkList) Cursor() int { return l.cursor }

// Selected returns the artwork under the cursor
func (l *ArtworkList) Selected() (domain.Artwork, bool) {
	if l.Len() == 0 || l.cursor < 0 || l.cursor >= l.Len() {
		return domain.Artwork{}, false
	}
	return l.at(l.cursor), true
}

// Visible returns the rows that pass the filter, in display order
func (l *ArtworkList) Visible() []domain.Artwork {
	out := make([]domain.Artwork, l.Len())
	for i := range out {
		out[i] = l.at(i)
	}
	return out
}

func (l *ArtworkList) at(i int) domain.Artwork {
	if l.filteredIdx != nil {
		return l.items[l.filteredIdx[i]]
	}
	return l.items[i]
}

// StartFilter opens the filter input
func (l *ArtworkList) StartFilter() tea.Cmd {
	l.filterActive = true
	l.filterInput.SetValue(l.filterQuery)
	return l.filterInput.Focus()
}

// IsFiltering reports whether the filter input has focus
func (l *ArtworkList) IsFiltering() bool { return l.filterActive }

// FilterQuery returns the applied filter text
func (l *ArtworkList) FilterQuery() string { return l.filterQuery }

// ClearFilter removes the filter and closes the input
func (l *ArtworkList) ClearFilter() {
	l.filterActive = false
	l.filterInput.Blur()
	l.filterInput.SetValue("")
	l.filterQuery = ""
	l.filteredIdx = nil
	l.clampCursor()
}

// applyFilter recomputes filteredIdx by fuzzy matching title and artist
func (l *ArtworkList) applyFilter() {
	if l.filterQuery == "" {
		l.filteredIdx = nil
		return
	}

	haystack := make([]string, len(l.items))
	for i, a := range l.items {
		haystack[i] = strings.ToLower(a.Title + " " + a.Artist)
	}
	matches := fuzzy.Find(strings.ToLower(l.filterQuery), haystack)

	l.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		l.filteredIdx[i] = match.Index
	}
}

// Update handles navigation and filter input
func (l *ArtworkList) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if l.filterActive {
		switch keyMsg.String() {
		case "esc":
			l.ClearFilter()
			return nil
		case "enter":
			l.filterActive = false
			l.filterInput.Blur()
			return nil
		case "up", "down":
			// fall through to navigation
		default:
			var cmd tea.Cmd
			l.filterInput, cmd = l.filterInput.Update(msg)
			if q := l.filterInput.Value(); q != l.filterQuery {
				l.filterQuery = q
				l.applyFilter()
				l.cursor, l.offset = 0, 0
			}
			return cmd
		}
	}

	switch {
	case key.Matches(keyMsg, ListKeys.Up):
		l.move(-1)
	case key.Matches(keyMsg, ListKeys.Down):
		l.move(1)
	case key.Matches(keyMsg, ListKeys.PageUp):
		l.move(-l.pageSize())
	case key.Matches(keyMsg, ListKeys.PageDown):
		l.move(l.pageSize())
	case key.Matches(keyMsg, ListKeys.Home):
		l.cursor = 0
		l.ensureVisible()
	case key.Matches(keyMsg, ListKeys.End):
		l.cursor = l.Len() - 1
		l.clampCursor()
	}
	return nil
}

func (l *ArtworkList) move(delta int) {
	l.cursor += delta
	l.clampCursor()
}

func (l *ArtworkList) clampCursor() {
	if l.cursor >= l.Len() {
		l.cursor = l.Len() - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.ensureVisible()
}

// pageSize is the number of rows that fit inside the border
func (l *ArtworkList) pageSize() int {
	rows := l.height - BorderHeight - HeaderLines
	if l.filterActive || l.filterQuery != "" {
		rows -= FilterLines
	}
	return max(rows, 1)
}

func (l *ArtworkList) ensureVisible() {
	page := l.pageSize()
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+page {
		l.offset = l.cursor - page + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

// View renders the list
func (l *ArtworkList) View() string {
	inner := max(l.width-BorderWidth, 10)

	var lines []string
	header := styles.TitleStyle.Render(styles.Truncate(l.title, inner-8))
	count := styles.DimStyle.Render(fmt.Sprintf(" %d", l.Len()))
	lines = append(lines, header+count)

	if l.filterActive {
		lines = append(lines, l.filterInput.View())
	} else if l.filterQuery != "" {
		lines = append(lines, styles.FilterStyle.Render("/ "+l.filterQuery))
	}

	if l.Len() == 0 {
		lines = append(lines, styles.DimStyle.Render(l.emptyText))
	}

	end := min(l.offset+l.pageSize(), l.Len())
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderRow(l.at(i), i == l.cursor, inner))
	}

	border := styles.InactiveBorder
	if l.focused {
		border = styles.ActiveBorder
	}
	return border.
		Width(inner).
		Height(max(l.height-BorderHeight, 1)).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (l *ArtworkList) renderRow(a domain.Artwork, selected bool, width int) string {
	mark := styles.NotFavoriteChar
	var markColor *lipgloss.Color
	if l.favorites[a.ID] {
		mark = styles.FavoriteChar
		c := styles.Wine
		markColor = &c
	}

	meta := a.Artist
	if a.Year != "" {
		meta += ", " + a.Year
	}
	titleWidth := max(width-lipgloss.Width(meta)-6, 8)

	dim := styles.DimGray
	parts := []styles.RowPart{
		{Text: mark + " ", Foreground: markColor},
		{Text: styles.Truncate(a.Title, titleWidth)},
		{Text: "  " + styles.Truncate(meta, max(width-titleWidth-6, 0)), Foreground: &dim},
	}
	return styles.RenderListRow(parts, selected, width)
}
