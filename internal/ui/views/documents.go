package views

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pmadmin/internal/api"
	"pmadmin/internal/models"
	"pmadmin/internal/session"
	"pmadmin/internal/ui/keys"
	"pmadmin/internal/ui/styles"
	"pmadmin/internal/ui/table"
)

type documentPayload struct {
	Name       string `json:"name"`
	ProjectID  string `json:"project_id"`
	UploadedBy string `json:"uploaded_by,omitempty"`
	FilePath   string `json:"file_path,omitempty"`
}

// DocumentsView lists project documents and handles upload and download.
type DocumentsView struct {
	client      *api.Client
	session     *session.Store
	styles      *styles.Styles
	keys        keys.KeyMap
	downloadDir string

	table    table.Model[models.Document]
	projects []models.Project
	users    []models.User
	loaded   bool

	editing       bool
	editingNew    bool
	selected      models.Document
	nameInput     textinput.Model
	pathInput     textinput.Model
	projectSelect selector
	focusIdx      int // 0=name, 1=project, 2=path, 3=save

	confirmingDelete bool
	deleteTarget     models.Document

	width  int
	height int
}

func NewDocumentsView(client *api.Client, sess *session.Store, downloadDir string, pageSize int) *DocumentsView {
	v := &DocumentsView{
		client:      client,
		session:     sess,
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		downloadDir: downloadDir,
	}

	v.nameInput = textinput.New()
	v.nameInput.Placeholder = "Document name (defaults to file name)"
	v.nameInput.CharLimit = 100

	v.pathInput = textinput.New()
	v.pathInput.Placeholder = "/path/to/local/file"
	v.pathInput.CharLimit = 255

	v.projectSelect = newSelector("Select Project")

	columns := []table.Column[models.Document]{
		{Header: "Name", Key: func(d models.Document) any { return d.Name }, Sortable: true},
		{Header: "Project", Render: func(d models.Document) string { return v.projectName(d.ProjectID) }},
		{Header: "Uploaded By", Render: func(d models.Document) string { return v.userName(d.UploadedBy) }},
	}
	v.table = table.New(columns, pageSize)
	return v
}

func (v *DocumentsView) projectName(id string) string {
	for _, p := range v.projects {
		if p.ID == id {
			return p.Name
		}
	}
	return "Unknown Project"
}

func (v *DocumentsView) userName(id string) string {
	for _, u := range v.users {
		if u.ID == id {
			return u.Name
		}
	}
	return "Unknown User"
}

type documentsLoadedMsg struct {
	documents []models.Document
}

type documentRefsLoadedMsg struct {
	projects []models.Project
	users    []models.User
}

func (v *DocumentsView) Init() tea.Cmd {
	return tea.Batch(v.loadDocuments, v.loadRefs)
}

func (v *DocumentsView) loadDocuments() tea.Msg {
	documents, err := api.List[models.Document](v.client, api.ResourceDocuments)
	if err != nil {
		return loadFailure(err)
	}
	return documentsLoadedMsg{documents: documents}
}

func (v *DocumentsView) loadRefs() tea.Msg {
	projects, err := api.List[models.Project](v.client, api.ResourceProjects)
	if err != nil {
		return loadFailure(err)
	}
	users, err := api.List[models.User](v.client, api.ResourceUsers)
	if err != nil {
		return loadFailure(err)
	}
	return documentRefsLoadedMsg{projects: projects, users: users}
}

func (v *DocumentsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetWidth(styles.ContentWidth(msg.Width) - 4)
		return v, nil

	case documentsLoadedMsg:
		v.table.SetRows(msg.documents)
		v.loaded = true
		return v, nil

	case documentRefsLoadedMsg:
		v.projects = msg.projects
		v.users = msg.users
		opts := make([]option, len(msg.projects))
		for i, p := range msg.projects {
			opts[i] = option{id: p.ID, label: p.Name}
		}
		v.projectSelect.SetOptions(opts)
		return v, nil

	case submitMsg:
		if msg.failure != nil {
			return v, emit(msg.failure)
		}
		switch msg.op {
		case "create":
			v.closeForm()
			return v, tea.Batch(toast("Document uploaded successfully"), v.loadDocuments)
		case "update":
			v.closeForm()
			return v, tea.Batch(toast("Document updated successfully"), v.loadDocuments)
		case "delete":
			return v, tea.Batch(toast("Document deleted successfully"), v.loadDocuments)
		}
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *DocumentsView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.table.SearchFocused() {
		var cmd tea.Cmd
		v.table, cmd = v.table.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.New):
		v.startForm(models.Document{}, true)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if row, ok := v.table.Selected(); ok {
			v.startForm(row, false)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if row, ok := v.table.Selected(); ok {
			v.confirmingDelete = true
			v.deleteTarget = row
		}
		return v, nil

	case msg.String() == "o":
		if row, ok := v.table.Selected(); ok {
			return v, v.download(row)
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, tea.Batch(v.loadDocuments, v.loadRefs)
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

// download saves a document to the download directory. It tries the API
// endpoint first, then a direct fetch of the stored file path, and as a last
// resort hands the path to the desktop opener.
func (v *DocumentsView) download(doc models.Document) tea.Cmd {
	return func() tea.Msg {
		if data, err := api.DownloadDocument(v.client, doc.ID); err == nil {
			dest := filepath.Join(v.downloadDir, downloadFileName(doc, data))
			if werr := os.WriteFile(dest, data, 0o644); werr == nil {
				return ToastMsg{Text: "Saved " + dest}
			}
		} else if resp, derr := http.Get(doc.FilePath); derr == nil {
			data, rerr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if rerr == nil && resp.StatusCode == http.StatusOK {
				dest := filepath.Join(v.downloadDir, downloadFileName(doc, data))
				if werr := os.WriteFile(dest, data, 0o644); werr == nil {
					return ToastMsg{Text: "Saved " + dest}
				}
			}
		}

		// Last resort: let the OS handle it.
		opener := "xdg-open"
		if runtime.GOOS == "darwin" {
			opener = "open"
		}
		if err := exec.Command(opener, doc.FilePath).Start(); err != nil {
			return ToastMsg{Text: "Unable to download document", Err: true}
		}
		return ToastMsg{Text: "Opened " + doc.Name}
	}
}

// downloadFileName keeps the document's own extension when it has one,
// otherwise sniffs one from the content.
func downloadFileName(doc models.Document, data []byte) string {
	name := doc.Name
	if name == "" {
		name = "document-" + doc.ID
	}
	if filepath.Ext(name) != "" {
		return name
	}
	switch http.DetectContentType(data) {
	case "application/pdf":
		return name + ".pdf"
	case "image/png":
		return name + ".png"
	case "image/jpeg":
		return name + ".jpg"
	case "application/zip":
		return name + ".zip"
	case "text/plain; charset=utf-8":
		return name + ".txt"
	}
	return name
}

func (v *DocumentsView) startForm(d models.Document, isNew bool) {
	v.editing = true
	v.editingNew = isNew
	v.selected = d
	v.focusIdx = 0
	v.nameInput.SetValue(d.Name)
	v.pathInput.Reset()
	v.projectSelect.Select(d.ProjectID)
	v.updateFocus()
}

func (v *DocumentsView) closeForm() {
	v.editing = false
	v.nameInput.Reset()
	v.pathInput.Reset()
	v.projectSelect.Reset()
}

func (v *DocumentsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTarget.ID
		return v, doSubmit("delete", func() (*api.Response, error) {
			return api.Delete(v.client, api.ResourceDocuments, id)
		})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *DocumentsView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.submit()

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 4
		v.updateFocus()
		return v, textinput.Blink

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 3) % 4
		v.updateFocus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == 3 {
			return v, v.submit()
		}
		v.focusIdx++
		v.updateFocus()
		return v, textinput.Blink

	case msg.String() == "left", msg.String() == "right":
		if v.focusIdx == 1 {
			if msg.String() == "left" {
				v.projectSelect.Prev()
			} else {
				v.projectSelect.Next()
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.nameInput, cmd = v.nameInput.Update(msg)
	case 2:
		v.pathInput, cmd = v.pathInput.Update(msg)
	}
	return v, cmd
}

func (v *DocumentsView) updateFocus() {
	v.nameInput.Blur()
	v.pathInput.Blur()
	switch v.focusIdx {
	case 0:
		v.nameInput.Focus()
	case 2:
		v.pathInput.Focus()
	}
}

func (v *DocumentsView) submit() tea.Cmd {
	name := strings.TrimSpace(v.nameInput.Value())
	path := strings.TrimSpace(v.pathInput.Value())
	projectID := v.projectSelect.Value()

	if projectID == "" {
		return toastErr("Project is required")
	}

	if !v.editingNew {
		if name == "" {
			return toastErr("Name is required")
		}
		id := v.selected.ID
		payload := documentPayload{Name: name, ProjectID: projectID}
		return doSubmit("update", func() (*api.Response, error) {
			return api.Update(v.client, api.ResourceDocuments, id, payload)
		})
	}

	if path != "" {
		if name == "" {
			name = filepath.Base(path)
		}
		docName := name
		return doSubmit("create", func() (*api.Response, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()
			return api.UploadDocument(v.client, docName, projectID, filepath.Base(path), f)
		})
	}

	// No local file given: create the record alone with a placeholder path.
	if name == "" {
		return toastErr("Name or file path is required")
	}
	payload := documentPayload{
		Name:      name,
		ProjectID: projectID,
		FilePath:  "uploads/" + name,
	}
	if u := v.session.User(); u != nil {
		payload.UploadedBy = u.ID
	}
	return doSubmit("create", func() (*api.Response, error) {
		return api.Create(v.client, api.ResourceDocuments, payload)
	})
}

func (v *DocumentsView) View() string {
	s := v.styles

	if v.confirmingDelete {
		return renderDeleteConfirm(s, "Document", v.width, v.height)
	}
	if v.editing {
		return v.renderForm()
	}
	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	help := s.Help.Render(
		s.HelpKey.Render("n") + " upload • " +
			s.HelpKey.Render("o") + " download • " +
			s.HelpKey.Render("e") + " edit • " +
			s.HelpKey.Render("d") + " delete • " +
			s.HelpKey.Render("/") + " search",
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Documents"),
		"",
		v.table.View(),
		help,
	)
}

func (v *DocumentsView) renderForm() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 50)

	formTitle := "Upload Document"
	if !v.editingNew {
		formTitle = "Edit Document"
	}

	fieldStyle := func(i int) lipgloss.Style {
		if v.focusIdx == i {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if v.focusIdx == 3 {
		btnStyle = s.ButtonFocused
	}

	parts := []string{
		s.Title.Render(formTitle),
		"",
		"Name:",
		fieldStyle(0).Width(inputWidth).Render(v.nameInput.View()),
		"",
		"Project:",
		v.projectSelect.View(s, v.focusIdx == 1, inputWidth),
	}
	if v.editingNew {
		parts = append(parts,
			"",
			"Local File:",
			fieldStyle(2).Width(inputWidth).Render(v.pathInput.View()),
		)
	}
	parts = append(parts,
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←/→: pick project • Ctrl+S: save • Esc: cancel"),
	)

	return renderModal(s, lipgloss.JoinVertical(lipgloss.Left, parts...), v.width, v.height)
}
