package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dompet/internal/core"
	"dompet/internal/log"
	"dompet/internal/metrics"
	"dompet/internal/services"
)

type (
	SavingsService interface {
		Deposit(ctx context.Context, amountText string) (services.DepositResult, error)
		Withdraw(ctx context.Context, amountText string) (services.WithdrawResult, error)
		Status(ctx context.Context) (services.SavingsStatus, error)
	}

	ExpenseService interface {
		RecordExpense(ctx context.Context, amountText, description string) (core.Expense, error)
		WeeklyReport(ctx context.Context, ref time.Time) (services.Report, error)
		MonthlyReport(ctx context.Context, ref time.Time) (services.Report, error)
	}

	NotesService interface {
		SaveNote(ctx context.Context, title, content string) (services.NoteOutcome, error)
		EditNote(ctx context.Context, title, content string) (services.NoteOutcome, error)
		ListNotes(ctx context.Context) ([]core.NoteSummary, error)
		ViewNote(ctx context.Context, title string) (core.Note, error)
		DeleteNote(ctx context.Context, title string) error
	}
)

// Incoming is a chat message reduced to what the router needs.
type Incoming struct {
	UserID    int64
	ChatID    int64
	FirstName string
	Text      string
}

// Reply is the text to send back. An empty Text means no reply.
type Reply struct {
	ChatID int64
	Text   string
}

// Router checks access, dispatches commands to the services and renders
// their results.
type Router struct {
	savings  SavingsService
	expenses ExpenseService
	notes    NotesService
	ownerID  int64
}

// NewRouter creates a router. An ownerID of 0 lets every user in.
func NewRouter(savings SavingsService, expenses ExpenseService, notes NotesService, ownerID int64) *Router {
	return &Router{
		savings:  savings,
		expenses: expenses,
		notes:    notes,
		ownerID:  ownerID,
	}
}

func (r *Router) allowed(userID int64) bool {
	return r.ownerID == 0 || userID == r.ownerID
}

// Handle answers one message. Non-command text gets no reply.
func (r *Router) Handle(ctx context.Context, in Incoming) Reply {
	start := time.Now()
	logger := log.FromContext(ctx)

	req, err := Parse(in.Text)
	if errors.Is(err, ErrNotCommand) {
		return Reply{}
	}

	command := "unknown"
	if req != nil {
		command = req.Command()
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		command = usage.Command
	}

	reply := func(outcome, text string) Reply {
		metrics.ObserveCommand(command, outcome, time.Since(start))
		return Reply{ChatID: in.ChatID, Text: text}
	}

	if !r.allowed(in.UserID) {
		logger.WarnContext(ctx, "Access denied", log.FieldUserID, in.UserID, log.FieldCommand, command)
		return reply(metrics.OutcomeDenied, msgDenied)
	}

	if usage != nil {
		return reply(metrics.OutcomeUsage, usage.Usage)
	}

	text, err := r.dispatch(ctx, req, in)
	if err != nil {
		if msg, ok := rejection(req, err); ok {
			logger.DebugContext(ctx, "Command rejected", log.FieldCommand, command, log.FieldError, err)
			return reply(metrics.OutcomeRejected, msg)
		}
		logger.ErrorContext(ctx, "Command failed", log.FieldCommand, command, log.FieldError, err)
		return reply(metrics.OutcomeError, msgFailure)
	}

	logger.InfoContext(ctx, "Command handled", log.FieldCommand, command,
		log.FieldDuration, time.Since(start).Milliseconds())
	return reply(metrics.OutcomeOK, text)
}

func (r *Router) dispatch(ctx context.Context, req Request, in Incoming) (string, error) {
	switch req := req.(type) {
	case StartRequest:
		return renderStart(in.FirstName), nil
	case HelpRequest:
		return renderHelp(), nil

	case DepositRequest:
		res, err := r.savings.Deposit(ctx, req.Amount)
		if err != nil {
			return "", err
		}
		return renderDeposit(res), nil

	case WithdrawRequest:
		res, err := r.savings.Withdraw(ctx, req.Amount)
		if err != nil {
			return "", err
		}
		// A refused withdrawal is a normal reply carrying the balance.
		return res.Message, nil

	case BalanceRequest:
		status, err := r.savings.Status(ctx)
		if err != nil {
			return "", err
		}
		return renderStatus(status), nil

	case ExpenseRequest:
		e, err := r.expenses.RecordExpense(ctx, req.Amount, req.Description)
		if err != nil {
			return "", err
		}
		return renderExpense(e), nil

	case WeeklyReportRequest:
		report, err := r.expenses.WeeklyReport(ctx, time.Time{})
		if err != nil {
			return "", err
		}
		return renderReport(report), nil

	case MonthlyReportRequest:
		report, err := r.expenses.MonthlyReport(ctx, time.Time{})
		if err != nil {
			return "", err
		}
		return renderReport(report), nil

	case SaveNoteRequest:
		out, err := r.notes.SaveNote(ctx, req.Title, req.Content)
		if err != nil {
			return "", err
		}
		return renderNoteSaved(out), nil

	case EditNoteRequest:
		out, err := r.notes.EditNote(ctx, req.Title, req.Content)
		if err != nil {
			return "", err
		}
		return "'" + out.Title + "' berhasil diubah.", nil

	case ListNotesRequest:
		notes, err := r.notes.ListNotes(ctx)
		if err != nil {
			return "", err
		}
		return renderNoteList(notes), nil

	case ViewNoteRequest:
		note, err := r.notes.ViewNote(ctx, req.Title)
		if err != nil {
			return "", err
		}
		return renderNote(note), nil

	case DeleteNoteRequest:
		if err := r.notes.DeleteNote(ctx, req.Title); err != nil {
			return "", err
		}
		return "Catatan '" + core.NormalizeTitle(req.Title) + "' berhasil dihapus", nil
	}

	return msgUnknown, nil
}

// rejection maps expected user errors to their reply. Anything else is a
// failure of the bot itself.
func rejection(req Request, err error) (string, bool) {
	switch {
	case errors.Is(err, core.ErrInvalidFormat):
		return msgInvalidAmount, true
	case errors.Is(err, core.ErrAmountTooLarge):
		return msgTooLarge, true
	case errors.Is(err, core.ErrDescriptionTooLong):
		return fmt.Sprintf("Keterangan terlalu panjang (maks %d karakter).", core.MaxDescriptionLength), true
	case errors.Is(err, core.ErrNotFound):
		switch req := req.(type) {
		case EditNoteRequest:
			return renderEditMissing(core.NormalizeTitle(req.Title)), true
		case ViewNoteRequest:
			return renderViewMissing(core.NormalizeTitle(req.Title)), true
		case DeleteNoteRequest:
			return renderDeleteMissing(core.NormalizeTitle(req.Title)), true
		}
	case errors.Is(err, core.ErrInvalidValue):
		switch req.(type) {
		case SaveNoteRequest, EditNoteRequest, ViewNoteRequest, DeleteNoteRequest:
			return msgNoteEmpty, true
		default:
			return msgNotPositive, true
		}
	}
	return "", false
}
