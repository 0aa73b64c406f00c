// Package bot turns chat commands into service calls and renders the replies.
package bot

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Command describes one chat command for /help and Telegram's command menu.
type Command struct {
	Name        string
	Description string
	Usage       string
}

// Commands lists the supported commands in menu order.
var Commands = []Command{
	{Name: "start", Description: "Mulai bot"},
	{Name: "help", Description: "Bantuan"},
	{Name: "tabung", Description: "Menabung", Usage: "Cara penggunaan: /tabung <jumlah>\nContoh: /tabung 50000"},
	{Name: "ambil", Description: "Ambil tabungan", Usage: "Cara penggunaan: /ambil <jumlah>\nContoh: /ambil 25000"},
	{Name: "saldo", Description: "Cek saldo"},
	{Name: "keluar", Description: "Catat pengeluaran", Usage: "Cara penggunaan: /keluar <jumlah> <keterangan>\n" +
		"Contoh: /keluar 10k jajan\n" +
		"Contoh: /keluar 50000 makan siang\n\n" +
		"Tips: Bisa pakai 'k' atau 'rb' untuk ribuan, 'jt' untuk jutaan"},
	{Name: "laporan", Description: "Laporan minggu ini"},
	{Name: "laporan_bulan", Description: "Laporan bulan ini"},
	{Name: "note", Description: "Simpan catatan", Usage: "Cara penggunaan: /note <judul> <isi>\n" +
		"Contoh: /note gmail password123\n" +
		"Contoh: /note wifi rumah MyWifiPassword123"},
	{Name: "edit", Description: "Ubah catatan", Usage: "Cara penggunaan: /edit <judul> <isi baru>\nContoh: /edit gmail newpassword123"},
	{Name: "notes", Description: "Daftar catatan"},
	{Name: "lihat", Description: "Lihat catatan", Usage: "Cara penggunaan: /lihat <judul>\nContoh: /lihat gmail"},
	{Name: "hapus_note", Description: "Hapus catatan", Usage: "Cara penggunaan: /hapus_note <judul>\nContoh: /hapus_note gmail"},
}

func usageFor(name string) string {
	for _, c := range Commands {
		if c.Name == name {
			return c.Usage
		}
	}
	return ""
}

// ErrNotCommand is returned by Parse for text that does not start with '/'.
var ErrNotCommand = errors.New("not a command")

// UsageError reports a command invoked without its required arguments.
type UsageError struct {
	Command string
	Usage   string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("missing arguments for /%s", e.Command)
}

// Request is a parsed command.
type Request interface {
	Command() string
}

type (
	StartRequest         struct{}
	HelpRequest          struct{}
	BalanceRequest       struct{}
	WeeklyReportRequest  struct{}
	MonthlyReportRequest struct{}
	ListNotesRequest     struct{}

	DepositRequest  struct{ Amount string }
	WithdrawRequest struct{ Amount string }

	ExpenseRequest struct {
		Amount      string
		Description string
	}

	SaveNoteRequest struct {
		Title   string
		Content string
	}

	EditNoteRequest struct {
		Title   string
		Content string
	}

	ViewNoteRequest   struct{ Title string }
	DeleteNoteRequest struct{ Title string }

	UnknownRequest struct{ Name string }
)

func (StartRequest) Command() string         { return "start" }
func (HelpRequest) Command() string          { return "help" }
func (BalanceRequest) Command() string       { return "saldo" }
func (WeeklyReportRequest) Command() string  { return "laporan" }
func (MonthlyReportRequest) Command() string { return "laporan_bulan" }
func (ListNotesRequest) Command() string     { return "notes" }
func (DepositRequest) Command() string       { return "tabung" }
func (WithdrawRequest) Command() string      { return "ambil" }
func (ExpenseRequest) Command() string       { return "keluar" }
func (SaveNoteRequest) Command() string      { return "note" }
func (EditNoteRequest) Command() string      { return "edit" }
func (ViewNoteRequest) Command() string      { return "lihat" }
func (DeleteNoteRequest) Command() string    { return "hapus_note" }
func (UnknownRequest) Command() string       { return "unknown" }

// Parse maps a chat message to a typed request. "/cmd@botname" is accepted.
// Descriptions and note contents keep their inner whitespace.
func Parse(text string) (Request, error) {
	head, rest := cutField(text)
	if !strings.HasPrefix(head, "/") || len(head) < 2 {
		return nil, ErrNotCommand
	}

	name := strings.ToLower(strings.TrimPrefix(head, "/"))
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}

	first, tail := cutField(rest)

	switch name {
	case "start":
		return StartRequest{}, nil
	case "help":
		return HelpRequest{}, nil
	case "saldo":
		return BalanceRequest{}, nil
	case "laporan":
		return WeeklyReportRequest{}, nil
	case "laporan_bulan":
		return MonthlyReportRequest{}, nil
	case "notes":
		return ListNotesRequest{}, nil

	case "tabung":
		if first == "" {
			return nil, usageError(name)
		}
		return DepositRequest{Amount: first}, nil
	case "ambil":
		if first == "" {
			return nil, usageError(name)
		}
		return WithdrawRequest{Amount: first}, nil
	case "keluar":
		if first == "" || tail == "" {
			return nil, usageError(name)
		}
		return ExpenseRequest{Amount: first, Description: tail}, nil
	case "note":
		if first == "" || tail == "" {
			return nil, usageError(name)
		}
		return SaveNoteRequest{Title: first, Content: tail}, nil
	case "edit":
		if first == "" || tail == "" {
			return nil, usageError(name)
		}
		return EditNoteRequest{Title: first, Content: tail}, nil
	case "lihat":
		if first == "" {
			return nil, usageError(name)
		}
		return ViewNoteRequest{Title: first}, nil
	case "hapus_note":
		if first == "" {
			return nil, usageError(name)
		}
		return DeleteNoteRequest{Title: first}, nil
	}

	return UnknownRequest{Name: name}, nil
}

func usageError(name string) error {
	return &UsageError{Command: name, Usage: usageFor(name)}
}

// cutField splits off the first whitespace separated field.
func cutField(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
