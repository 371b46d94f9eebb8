// Package planner ties the roadmap to a conversation with the AI planner:
// settings, the undo history, the chat log and uploaded files. Every surface
// proposes a whole roadmap and the session commits it.
package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/calendar"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/history"
	"github.com/alexanderramin/roadmap/internal/importer"
	"github.com/alexanderramin/roadmap/internal/llm"
	"github.com/google/uuid"
)

var (
	// ErrEmptyMessage is returned when there is neither text nor a file to send.
	ErrEmptyMessage = errors.New("message is empty and no files are attached")
	// ErrFileNotFound is returned when removing an unknown upload.
	ErrFileNotFound = errors.New("uploaded file not found")
	// ErrInvalidState is returned when restoring an inconsistent saved session.
	ErrInvalidState = errors.New("invalid saved session")
	// ErrInvalidRoadmap is returned when a proposed roadmap breaks the task
	// invariants after defaults and ids are filled in.
	ErrInvalidRoadmap = errors.New("invalid roadmap")
)

// RoadmapContextHeader precedes the JSON roadmap sent with each AI request.
const RoadmapContextHeader = "Current Project Plan (as JSON):\n"

var jsonFenceBlock = regexp.MustCompile("(?s)```json\\n?(.*?)```")

// ImportMode decides what an import does to the existing roadmap.
type ImportMode string

const (
	ImportReplace ImportMode = "replace"
	ImportMerge   ImportMode = "merge"
)

// ParseImportMode accepts "replace" and "merge". Empty means replace.
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ImportReplace:
		return ImportReplace, nil
	case ImportMerge:
		return ImportMerge, nil
	}
	return "", fmt.Errorf("unknown import mode %q (expected replace or merge)", s)
}

// Settings describe the project the AI plans for.
type Settings struct {
	StartDate   string            `json:"startDate,omitempty"`
	WorkDays    calendar.WorkDays `json:"workDays"`
	PeriodWeeks int               `json:"periodWeeks"`
	Language    string            `json:"language"`
	ImportMode  ImportMode        `json:"importMode"`
}

// DefaultSettings is a four week Monday to Friday plan in English.
func DefaultSettings() Settings {
	return Settings{
		WorkDays:    calendar.Weekdays,
		PeriodWeeks: 4,
		Language:    "en",
		ImportMode:  ImportReplace,
	}
}

func (s Settings) Validate() error {
	if s.StartDate != "" {
		if _, err := calendar.ParseDate(s.StartDate); err != nil {
			return fmt.Errorf("start date: %w", err)
		}
	}
	if s.PeriodWeeks < 1 {
		return fmt.Errorf("period must be at least one week, got %d", s.PeriodWeeks)
	}
	if s.WorkDays.Empty() {
		return fmt.Errorf("at least one work day is required")
	}
	if _, err := ParseImportMode(string(s.ImportMode)); err != nil {
		return err
	}
	return nil
}

// TargetWorkDays is the number of working days an AI plan is rescaled onto.
func (s Settings) TargetWorkDays() int {
	return s.PeriodWeeks * s.WorkDays.Len()
}

// Download is an artifact offered with an assistant message.
type Download struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Message is one entry of the chat log.
type Message struct {
	ID             string     `json:"id"`
	Role           llm.Role   `json:"role"`
	Content        string     `json:"content"`
	Downloads      []Download `json:"downloads,omitempty"`
	ImportedEvents int        `json:"importedEvents,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// FileKind tells how an uploaded file was interpreted.
type FileKind string

const (
	FileText     FileKind = "text"
	FileCalendar FileKind = "calendar"
	FileJSON     FileKind = "json"
)

// File is an upload kept as context for the next AI request.
type File struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Kind           FileKind `json:"kind"`
	Content        string   `json:"content"`
	Size           int      `json:"size"`
	ImportedEvents int      `json:"importedEvents"`
}

// State is everything needed to rebuild a session.
type State struct {
	Settings  Settings
	Prompt    string
	Snapshots []domain.Roadmap
	Cursor    int
	Messages  []Message
	Files     []File
}

// Session is a planning conversation and the roadmap history it produced.
// It is not safe for concurrent use.
type Session struct {
	settings Settings
	prompt   string
	history  *history.Store[domain.Roadmap]
	messages []Message
	files    []File

	texts    Texts
	template PromptTemplate
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger

	// summaryPrefix is stripped from imported calendar event titles.
	summaryPrefix string
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDs sets the id generator for tasks, messages and files.
func WithIDs(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// WithLogger sets where import warnings go.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithTexts overrides chat notices. Empty fields keep the defaults.
func WithTexts(t Texts) Option {
	return func(s *Session) { s.texts = t }
}

// WithSummaryPrefix sets the event title prefix the calendar export writes,
// so importing an exported file yields the bare task names.
func WithSummaryPrefix(prefix string) Option {
	return func(s *Session) { s.summaryPrefix = prefix }
}

// WithPromptTemplate overrides the planning form template.
func WithPromptTemplate(p PromptTemplate) Option {
	return func(s *Session) { s.template = p }
}

// New starts an empty session.
func New(settings Settings, opts ...Option) *Session {
	s := &Session{
		settings: settings,
		history:  history.New(domain.Roadmap{}, domain.Roadmap.Equal),
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.texts = s.texts.WithDefaults(settings.Language)
	s.template = s.template.WithDefaults(settings.Language)
	return s
}

// Restore rebuilds a session saved with State.
func Restore(st State, opts ...Option) (*Session, error) {
	s := New(st.Settings, opts...)
	if len(st.Snapshots) > 0 && !s.history.Restore(st.Snapshots, st.Cursor) {
		return nil, fmt.Errorf("%w: cursor %d outside %d snapshots", ErrInvalidState, st.Cursor, len(st.Snapshots))
	}
	s.prompt = st.Prompt
	s.messages = append([]Message(nil), st.Messages...)
	s.files = append([]File(nil), st.Files...)
	return s, nil
}

// State captures the session for persistence.
func (s *Session) State() State {
	return State{
		Settings:  s.settings,
		Prompt:    s.prompt,
		Snapshots: s.history.Snapshots(),
		Cursor:    s.history.Index(),
		Messages:  append([]Message(nil), s.messages...),
		Files:     append([]File(nil), s.files...),
	}
}

func (s *Session) Settings() Settings { return s.settings }

// UpdateSettings replaces the settings after validating them. A language
// change does not retranslate texts already configured.
func (s *Session) UpdateSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.settings = settings
	return nil
}

// Prompt is the system prompt generated from the planning form.
func (s *Session) Prompt() string { return s.prompt }

// ApplyForm adopts the form's start date, work days and period, and builds
// the system prompt from it. It returns the confirmation notice it logged.
func (s *Session) ApplyForm(f Form) (Message, error) {
	if err := f.Validate(); err != nil {
		return Message{}, err
	}
	s.settings.StartDate = f.startDate(s.now())
	s.settings.WorkDays = f.WorkDays
	s.settings.PeriodWeeks = f.PeriodWeeks
	s.prompt = BuildPrompt(f, s.template, s.settings.Language)
	return s.appendMessage(llm.RoleSystem, s.template.Generated), nil
}

// History exposes the undo store so editing surfaces commit through it.
func (s *Session) History() *history.Store[domain.Roadmap] { return s.history }

// Roadmap returns the current roadmap.
func (s *Session) Roadmap() domain.Roadmap { return s.history.Current() }

// Commit sorts r by date and records it. It reports whether anything changed.
func (s *Session) Commit(r domain.Roadmap) bool {
	return s.history.Commit(r.Sorted())
}

func (s *Session) Undo() bool    { return s.history.Undo() }
func (s *Session) Redo() bool    { return s.history.Redo() }
func (s *Session) CanUndo() bool { return s.history.CanUndo() }
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// Today returns the daily instances that fall on the session's today.
func (s *Session) Today() []domain.DailyInstance {
	return domain.TodayInstances(s.Roadmap(), calendar.FormatDate(s.now()))
}

// Progress summarizes completion of the current roadmap.
func (s *Session) Progress() domain.Progress {
	return domain.ComputeProgress(s.Roadmap())
}

// RoadmapContext serializes the current roadmap for the AI.
func (s *Session) RoadmapContext() (string, error) {
	r := s.Roadmap()
	if r == nil {
		r = domain.Roadmap{}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding roadmap context: %w", err)
	}
	return RoadmapContextHeader + string(data), nil
}

// HandleRoadmapUpdate accepts a full proposed roadmap from an editing
// surface, in canonical or timeline shape, and commits it. Entries that
// could not be converted are kept unchanged and reported as warnings. Task
// defaults are filled in and missing or repeated ids replaced. A roadmap that
// still breaks the task invariants, such as a task without a usable date, is
// rejected with ErrInvalidRoadmap and nothing is committed.
func (s *Session) HandleRoadmapUpdate(data []byte) (bool, []error, error) {
	r, errs := importer.Reconcile(data)
	s.warn("roadmap update", errs)
	if r == nil {
		return false, errs, nil
	}
	r = r.Normalized(s.newID)
	if err := r.Validate(); err != nil {
		return false, errs, fmt.Errorf("%w: %w", ErrInvalidRoadmap, err)
	}
	return s.Commit(r), errs, nil
}

// ProcessAIResponse imports the plan carried by an assistant reply. JSON
// fragments win; ICS fragments are only read when the reply has no JSON.
// The imported tasks replace or extend the roadmap per the import mode.
//
// It logs one system notice per unreadable fragment, then the assistant
// message with JSON blocks replaced by a notice and every fragment offered as
// a download, then the import count. The assistant message is returned.
func (s *Session) ProcessAIResponse(content string) (Message, []error) {
	jsonFrags := importer.ExtractJSONContent(content)
	icsFrags := importer.ExtractICSContent(content)

	var (
		events domain.Roadmap
		errs   []error
	)
	if len(jsonFrags) > 0 {
		opts := s.importOptions(importer.PlanDefaults(s.texts.DefaultMotivation))
		for i, frag := range jsonFrags {
			items, err := importer.DecodePlanItems(frag)
			if err != nil {
				errs = append(errs, fmt.Errorf("fragment %d: %w", i+1, err))
				s.appendMessage(llm.RoleSystem, s.texts.ParseError+err.Error())
				continue
			}
			tasks, itemErrs := importer.PlanToTasks(items, opts)
			for _, e := range itemErrs {
				errs = append(errs, fmt.Errorf("fragment %d: %w", i+1, e))
			}
			events = append(events, tasks...)
		}
	} else {
		opts := s.importOptions(importer.FileDefaults(s.texts.DefaultMotivation))
		for i, frag := range icsFrags {
			tasks, icsErrs := importer.ParseICS(frag, opts)
			for _, e := range icsErrs {
				errs = append(errs, fmt.Errorf("calendar %d: %w", i+1, e))
			}
			events = append(events, tasks...)
		}
	}
	s.warn("ai response", errs)

	if len(events) > 0 {
		s.apply(events)
	}

	downloads := make([]Download, 0, len(jsonFrags)+len(icsFrags))
	for i, frag := range jsonFrags {
		downloads = append(downloads, Download{Name: fmt.Sprintf("roadmap-%d.json", i+1), ContentType: "application/json", Content: frag})
	}
	for i, frag := range icsFrags {
		downloads = append(downloads, Download{Name: fmt.Sprintf("kalender-%d.ics", i+1), ContentType: "text/calendar", Content: frag})
	}

	msg := s.newMessage(llm.RoleAssistant, jsonFenceBlock.ReplaceAllLiteralString(content, s.texts.ImportNotice))
	msg.Downloads = downloads
	msg.ImportedEvents = len(events)
	s.messages = append(s.messages, msg)

	if len(events) > 0 {
		s.appendMessage(llm.RoleSystem, strings.ReplaceAll(s.texts.AutoImportSuccess, "{count}", strconv.Itoa(len(events))))
	}
	return msg, errs
}

// ImportFile interprets an upload by extension: .ics as a calendar, .json as
// a dated roadmap, anything else as plain text context. Tasks found replace
// or extend the roadmap. The file is kept for the next AI request either way.
func (s *Session) ImportFile(name string, content []byte) (File, []error) {
	f := File{
		ID:      s.newID(),
		Name:    name,
		Kind:    FileText,
		Content: string(content),
		Size:    len(content),
	}

	opts := s.importOptions(importer.FileDefaults(s.texts.DefaultMotivation))
	var (
		tasks domain.Roadmap
		errs  []error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ics":
		f.Kind = FileCalendar
		tasks, errs = importer.ParseICS(f.Content, opts)
	case ".json":
		f.Kind = FileJSON
		tasks, errs = importer.ParseJSONRoadmap(f.Content, opts)
	}
	s.warn("file "+name, errs)

	if len(tasks) > 0 {
		s.apply(tasks)
		f.ImportedEvents = len(tasks)
	}
	s.files = append(s.files, f)
	return f, errs
}

// RemoveFile drops an upload from the request context.
func (s *Session) RemoveFile(id string) error {
	for i, f := range s.files {
		if f.ID == id {
			s.files = append(s.files[:i:i], s.files[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrFileNotFound, id)
}

func (s *Session) Files() []File { return append([]File(nil), s.files...) }

func (s *Session) Messages() []Message { return append([]Message(nil), s.messages...) }

// apply commits events over or after the current roadmap.
func (s *Session) apply(events domain.Roadmap) {
	next := events
	if s.settings.ImportMode == ImportMerge {
		next = append(s.Roadmap().Clone(), events...)
	}
	s.Commit(next)
}

func (s *Session) importOptions(d importer.Defaults) importer.Options {
	today := s.now()
	start := today
	if s.settings.StartDate != "" {
		if t, err := calendar.ParseDate(s.settings.StartDate); err == nil {
			start = t
		}
	}
	return importer.Options{
		StartDate:      start,
		WorkDays:       s.settings.WorkDays,
		TargetWorkDays: s.settings.TargetWorkDays(),
		Today:          today,
		Defaults:       d,
		SummaryPrefix:  s.summaryPrefix,
		NewID:          s.newID,
	}
}

func (s *Session) newMessage(role llm.Role, content string) Message {
	return Message{ID: s.newID(), Role: role, Content: content, CreatedAt: s.now().UTC()}
}

func (s *Session) appendMessage(role llm.Role, content string) Message {
	msg := s.newMessage(role, content)
	s.messages = append(s.messages, msg)
	return msg
}

func (s *Session) warn(source string, errs []error) {
	for _, err := range errs {
		s.logger.Warn("import problem", "source", source, "error", err)
	}
}
