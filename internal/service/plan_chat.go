package service

import (
	"context"
	"errors"

	"github.com/alexanderramin/roadmap/internal/db"
)

// Chat sends text and the plan's uploads to the AI and imports the plan in
// its reply. The request runs outside any transaction; the session is saved
// afterwards, also when the request failed, so the error notice is kept.
func (s *planService) Chat(ctx context.Context, name, text string) (res *ChatResult, err error) {
	fields := map[string]any{}
	done := track(ctx, s.observer, "chat", name, fields)
	defer func() { done(err) }()

	if s.chat == nil {
		return nil, ErrNoChat
	}

	var lp *loadedPlan
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		lp, err = s.load(ctx, tx, name)
		return err
	})
	if err != nil {
		return nil, err
	}

	msg, sendErr := lp.session.SendMessage(ctx, s.chat, text)
	if sendErr != nil && msg.ID == "" {
		// Nothing was logged, e.g. an empty message.
		return nil, sendErr
	}
	fields["imported"] = msg.ImportedEvents

	saveErr := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return s.save(ctx, tx, lp)
	})
	err = errors.Join(sendErr, saveErr)
	return &ChatResult{Message: msg, Roadmap: lp.session.Roadmap()}, err
}

// ProcessReply imports an assistant reply that was obtained elsewhere, for
// example pasted by the user.
func (s *planService) ProcessReply(ctx context.Context, name, content string) (res *ChatResult, err error) {
	fields := map[string]any{}
	done := track(ctx, s.observer, "process-reply", name, fields)
	defer func() { done(err) }()

	err = s.mutate(ctx, name, func(lp *loadedPlan) error {
		msg, warnings := lp.session.ProcessAIResponse(content)
		res = &ChatResult{Message: msg, Roadmap: lp.session.Roadmap(), Warnings: warnings}
		fields["imported"] = msg.ImportedEvents
		fields["warnings"] = len(warnings)
		return nil
	})
	return res, err
}

func (s *planService) ImportFile(ctx context.Context, name, fileName string, content []byte) (res *FileResult, err error) {
	fields := map[string]any{"file": fileName}
	done := track(ctx, s.observer, "import-file", name, fields)
	defer func() { done(err) }()

	err = s.mutate(ctx, name, func(lp *loadedPlan) error {
		f, warnings := lp.session.ImportFile(fileName, content)
		res = &FileResult{File: f, Roadmap: lp.session.Roadmap(), Warnings: warnings}
		fields["imported"] = f.ImportedEvents
		fields["warnings"] = len(warnings)
		return nil
	})
	return res, err
}

func (s *planService) RemoveFile(ctx context.Context, name, fileID string) (err error) {
	done := track(ctx, s.observer, "remove-file", name, nil)
	defer func() { done(err) }()

	return s.mutate(ctx, name, func(lp *loadedPlan) error {
		return lp.session.RemoveFile(fileID)
	})
}
