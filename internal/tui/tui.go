// Package tui is the terminal client: a Bubble Tea list over the
// synchronization store, with inline add and keyboard-driven toggle,
// delete and refresh. Mutations go through the store, so toggles and
// deletes render optimistically and roll back on network failure.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskdesk.org/internal/client"
	"taskdesk.org/internal/todo"
)

const requestTimeout = 10 * time.Second

// listItem adapts a todo record to bubbles/list.Item.
type listItem struct {
	todo todo.Todo
}

func (i listItem) title() string {
	box := boxUnchecked
	if i.todo.Completed {
		box = boxChecked
	}
	return fmt.Sprintf("%s %s", box, i.todo.Title)
}

func (i listItem) Title() string       { return i.title() }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.todo.Title }

// Single-line renderer.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)

	box := mutedStyle.Render(boxUnchecked)
	text := it.todo.Title
	if it.todo.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

// Messages carry the store's state back into the event loop after each
// network call resolves.
type refreshMsg struct {
	todos []todo.Todo
	err   error
}

type model struct {
	store *client.Store
	list  list.Model

	adding bool
	input  textinput.Model
	addErr string

	width  int
	height int
	errMsg string
}

// Run loads the list and starts the interactive program.
func Run(store *client.Store) error {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = titleStyle.Render("Taskdesk")
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")

	addBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleBind := key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	refreshBind := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	extra := func() []key.Binding {
		return []key.Binding{addBind, toggleBind, deleteBind, refreshBind}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "New todo title..."
	input.CharLimit = 200

	m := model{store: store, list: l, input: input}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd { return m.fetch() }

func (m model) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := m.store.Fetch(ctx)
		return refreshMsg{todos: m.store.Todos(), err: err}
	}
}

func (m model) add(title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := m.store.Add(ctx, title, "")
		return refreshMsg{todos: m.store.Todos(), err: err}
	}
}

func (m model) toggle(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := m.store.Toggle(ctx, id)
		return refreshMsg{todos: m.store.Todos(), err: err}
	}
}

func (m model) delete(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := m.store.Delete(ctx, id)
		return refreshMsg{todos: m.store.Todos(), err: err}
	}
}

func (m model) repaintSoon() tea.Cmd {
	return tea.Tick(30*time.Millisecond, func(time.Time) tea.Msg {
		return refreshMsg{todos: m.store.Todos(), err: m.store.Err()}
	})
}

// render pushes the store's current view into the list widget, keeping the
// cursor in bounds.
func (m *model) render(todos []todo.Todo) {
	items := make([]list.Item, 0, len(todos))
	for _, t := range todos {
		items = append(items, listItem{todo: t})
	}
	m.list.SetItems(items)
	if m.list.Index() >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
}

func (m *model) selected() (todo.Todo, bool) {
	i := m.list.Index()
	items := m.list.Items()
	if i < 0 || i >= len(items) {
		return todo.Todo{}, false
	}
	li, ok := items[i].(listItem)
	if !ok {
		return todo.Todo{}, false
	}
	return li.todo, true
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case refreshMsg:
		m.render(msg.todos)
		m.errMsg = ""
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		return m, nil
	}

	if m.adding {
		var cmd tea.Cmd
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "enter":
				title := strings.TrimSpace(m.input.Value())
				if title == "" {
					m.addErr = "Title cannot be empty"
					return m, nil
				}
				m.adding = false
				m.addErr = ""
				m.input.SetValue("")
				m.input.Blur()
				return m, m.add(title)
			case "esc":
				m.adding = false
				m.addErr = ""
				m.input.SetValue("")
				m.input.Blur()
				return m, nil
			}
		}
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
		switch keyMsg.String() {
		case "q", "esc":
			return m, tea.Quit
		case " ":
			if t, ok := m.selected(); ok {
				// The store applies the flip before the network call resolves;
				// the early repaint makes that optimistic state visible.
				return m, tea.Batch(m.toggle(t.ID), m.repaintSoon())
			}
			return m, nil
		case "d":
			if t, ok := m.selected(); ok {
				return m, tea.Batch(m.delete(t.ID), m.repaintSoon())
			}
			return m, nil
		case "a":
			m.adding = true
			m.input.SetValue("")
			m.input.Focus()
			return m, nil
		case "r":
			return m, m.fetch()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	w, h := m.width, m.height
	if w == 0 {
		w, h = 80, 24
	}

	listHeight := h - 4
	if m.adding {
		listHeight = h - 6
	}
	m.list.SetSize(w-2, listHeight)

	done, pending := 0, 0
	for _, it := range m.list.Items() {
		if li, ok := it.(listItem); ok {
			if li.todo.Completed {
				done++
			} else {
				pending++
			}
		}
	}
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Taskdesk"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), done+pending,
	)

	content := m.list.View()
	if m.errMsg != "" {
		content += "\n" + errorStyle.Render("✖ "+m.errMsg)
	}
	if m.adding {
		title := "Add new todo"
		if m.addErr != "" {
			title += " — " + errorStyle.Render(m.addErr)
		}
		content += "\n" + panelStyle.Render(title+"\n"+m.input.View())
	}
	return panelStyle.Render(content)
}
