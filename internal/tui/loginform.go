package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// LoginForm collects credentials. In register mode it also asks for a
// display name.
type LoginForm struct {
	Register bool
	Name     textinput.Model
	Email    textinput.Model
	Password textinput.Model
	focus    int
	Err      string
}

// formAction is what a key press asked the form to do.
type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

// NewLoginForm returns a form with the email field focused.
func NewLoginForm() *LoginForm {
	newInput := func(prompt, placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Prompt = prompt
		ti.Placeholder = placeholder
		ti.CharLimit = 128
		return ti
	}
	f := &LoginForm{
		Name:     newInput("name     ▸ ", "Ada Lovelace"),
		Email:    newInput("email    ▸ ", "you@example.com"),
		Password: newInput("password ▸ ", ""),
	}
	f.Password.EchoMode = textinput.EchoPassword
	f.Password.EchoCharacter = '•'
	f.focusField()
	return f
}

// fields returns the inputs in tab order.
func (f *LoginForm) fields() []*textinput.Model {
	if f.Register {
		return []*textinput.Model{&f.Name, &f.Email, &f.Password}
	}
	return []*textinput.Model{&f.Email, &f.Password}
}

func (f *LoginForm) focusField() {
	fields := f.fields()
	f.focus = max(0, min(f.focus, len(fields)-1))
	f.Name.Blur()
	f.Email.Blur()
	f.Password.Blur()
	fields[f.focus].Focus()
}

// Update handles one message. Enter on the last field submits.
func (f *LoginForm) Update(msg tea.Msg) (formAction, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			return formCancel, nil
		case "ctrl+r":
			f.Register = !f.Register
			f.focus = 0
			f.focusField()
			return formNone, nil
		case "tab", "down":
			f.focus = (f.focus + 1) % len(f.fields())
			f.focusField()
			return formNone, nil
		case "shift+tab", "up":
			n := len(f.fields())
			f.focus = (f.focus - 1 + n) % n
			f.focusField()
			return formNone, nil
		case "enter":
			if f.focus < len(f.fields())-1 {
				f.focus++
				f.focusField()
				return formNone, nil
			}
			if f.Valid() {
				return formSubmit, nil
			}
			f.Err = "all fields are required"
			return formNone, nil
		}
	}
	var cmd tea.Cmd
	field := f.fields()[f.focus]
	*field, cmd = field.Update(msg)
	return formNone, cmd
}

// Valid reports whether every shown field has a value.
func (f *LoginForm) Valid() bool {
	for _, field := range f.fields() {
		if strings.TrimSpace(field.Value()) == "" {
			return false
		}
	}
	return true
}

// View renders the form as an overlay box.
func (f *LoginForm) View() string {
	title := "Log in"
	if f.Register {
		title = "Register"
	}
	var b strings.Builder
	b.WriteString(styleDetailTitle.Render(title))
	b.WriteString("\n\n")
	for _, field := range f.fields() {
		b.WriteString(field.View())
		b.WriteString("\n")
	}
	if f.Err != "" {
		b.WriteString("\n")
		b.WriteString(styleNoticeError.Render(f.Err))
	}
	b.WriteString("\n")
	mode := "ctrl+r: register"
	if f.Register {
		mode = "ctrl+r: log in instead"
	}
	b.WriteString(styleDetailDim.Render("tab: next  enter: submit  esc: cancel  " + mode))
	return styleOverlay.Render(b.String())
}
