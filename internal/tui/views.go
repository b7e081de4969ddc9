package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/atelier/internal/domain"
	"github.com/mmcdole/atelier/internal/tui/styles"
)

// updateLayout sizes the lists for the current window
func (m *Model) updateLayout() {
	bodyHeight := max(m.Height-HeaderHeight-m.footerHeight(), 3)
	listWidth := m.Width
	if m.details {
		listWidth = m.Width - m.Width*DetailPercent/100
	}
	m.gallery.SetSize(listWidth, bodyHeight)
	m.favList.SetSize(listWidth, bodyHeight)
}

func (m Model) footerHeight() int {
	if m.showHelp {
		return lipgloss.Height(m.help.View(Keys)) + FooterHeight
	}
	return FooterHeight
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	body := m.renderBody()
	if m.confirm.IsVisible() {
		bodyHeight := lipgloss.Height(body)
		body = lipgloss.Place(m.Width, bodyHeight, lipgloss.Center, lipgloss.Center, m.confirm.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

func (m Model) renderBody() string {
	list := m.activeList()
	if !m.details {
		return list.View()
	}

	detailWidth := m.Width * DetailPercent / 100
	var detail string
	if a, ok := list.Selected(); ok {
		detail = renderDetails(a, m.cache.IsFavorite(a.ID), detailWidth-4)
	} else {
		detail = styles.DimStyle.Render("Nothing selected")
	}
	panel := styles.InactiveBorder.
		Width(max(detailWidth-2, 1)).
		Height(max(m.Height-HeaderHeight-m.footerHeight()-2, 1)).
		Padding(0, 1).
		Render(detail)
	return lipgloss.JoinHorizontal(lipgloss.Top, list.View(), panel)
}

func (m Model) renderHeader() string {
	tab := func(label string, active bool) string {
		if active {
			return styles.ActiveTabStyle.Render(label)
		}
		return styles.InactiveTabStyle.Render(label)
	}
	left := tab("Gallery", m.view == ViewGallery) + " " +
		tab(fmt.Sprintf("%s %d", styles.FavoriteChar, len(m.favIDs)), m.view == ViewFavorites)

	right := m.syncBadge()
	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) syncBadge() string {
	switch {
	case m.syncing:
		return styles.DimBadgeStyle.Render("syncing...")
	case !m.authenticated:
		return styles.DimBadgeStyle.Render("local only")
	case m.syncState != domain.SyncEnabled:
		return styles.DimBadgeStyle.Render("sync off")
	case m.username != "":
		return styles.BadgeStyle.Render("synced · " + m.username)
	default:
		return styles.BadgeStyle.Render("synced")
	}
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.StatusMsg == "":
		status = m.help.ShortHelpView(Keys.ShortHelp())
	case m.StatusIsErr:
		status = styles.ErrorStyle.Render(styles.Truncate(m.StatusMsg, m.Width))
	default:
		status = styles.SuccessStyle.Render(styles.Truncate(m.StatusMsg, m.Width))
	}
	if m.offline {
		status = styles.DimStyle.Render("[offline] ") + status
	}
	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, m.help.View(Keys), status)
	}
	return status
}

// renderDetails renders the inspector for an artwork
func renderDetails(a domain.Artwork, favorite bool, width int) string {
	width = max(width, 10)
	mark := styles.NotFavoriteMark
	if favorite {
		mark = styles.FavoriteMark
	}

	lines := []string{
		mark + " " + styles.TitleStyle.Render(styles.Truncate(a.Title, width-2)),
		styles.AccentStyle.Render(a.Artist),
		"",
	}
	field := func(label, value string) {
		if value != "" {
			lines = append(lines, styles.DimStyle.Render(label+": ")+styles.SubtitleStyle.Render(value))
		}
	}
	field("Year", a.Year)
	field("Century", a.Century())
	field("Category", a.Category)
	field("Technique", a.Technique)
	field("Dimensions", a.Dimensions)

	if a.Description != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(width).Foreground(styles.LightGray).Render(a.Description))
	}
	return strings.Join(lines, "\n")
}
