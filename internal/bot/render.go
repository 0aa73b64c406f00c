package bot

import (
	"fmt"
	"strings"

	"dompet/internal/core"
	"dompet/internal/services"
)

const (
	msgDenied        = "Akses ditolak. Bot ini hanya untuk pemilik."
	msgUnknown       = "Command tidak dikenal. Ketik /help untuk melihat daftar command."
	msgFailure       = "Terjadi kesalahan. Silakan coba lagi nanti."
	msgInvalidAmount = "Jumlah tidak valid. Contoh: 10k, 50000, 1jt"
	msgNotPositive   = "Jumlah harus lebih dari 0"
	msgTooLarge      = "Jumlah terlalu besar."
	msgNoteEmpty     = "Judul dan isi catatan tidak boleh kosong."

	reportRule = 35
	noteRule   = 30
)

var bulan = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

func renderStart(firstName string) string {
	return fmt.Sprintf("Halo %s!\n\n"+
		"Aku asisten pribadi kamu untuk:\n"+
		"- Menabung\n"+
		"- Catat pengeluaran\n"+
		"- Simpan catatan/password\n\n"+
		"Ketik /help untuk lihat cara pakai.", firstName)
}

func renderHelp() string {
	return "TABUNGAN\n" +
		"/tabung 50000 - nabung\n" +
		"/ambil 25000 - ambil\n" +
		"/saldo - cek saldo\n\n" +
		"PENGELUARAN\n" +
		"/keluar 10k jajan - catat\n" +
		"/laporan - minggu ini\n" +
		"/laporan_bulan - bulan ini\n\n" +
		"CATATAN\n" +
		"/note gmail pass123 - simpan\n" +
		"/edit gmail newpass - ubah\n" +
		"/notes - lihat semua\n" +
		"/lihat gmail - buka\n" +
		"/hapus_note gmail - hapus\n\n" +
		"Tips: 10k = 10.000, 1jt = 1.000.000"
}

func renderDeposit(r services.DepositResult) string {
	return fmt.Sprintf("Berhasil menabung %s\nSaldo tabungan sekarang: %s",
		core.FormatRupiah(r.Amount), core.FormatRupiah(r.Balance))
}

func renderStatus(s services.SavingsStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Saldo tabungan: %s\n", core.FormatRupiah(s.Balance))

	if len(s.Recent) > 0 {
		b.WriteString("\nTransaksi terakhir:\n")
		for _, tx := range s.Recent {
			sign := "+"
			if tx.Kind == core.Withdraw {
				sign = "-"
			}
			fmt.Fprintf(&b, "  %s | %s%s\n", tx.CreatedAt.Format("2006-01-02"), sign, core.FormatRupiah(tx.Abs()))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderExpense(e core.Expense) string {
	return fmt.Sprintf("Pengeluaran tercatat:\n  Jumlah: %s\n  Keterangan: %s\n  Waktu: %s",
		core.FormatRupiah(e.Amount), e.Description, e.CreatedAt.Format("02/01/2006 15:04"))
}

func renderReport(r services.Report) string {
	monthly := r.Kind == services.Monthly

	if r.Empty() {
		if monthly {
			return "Tidak ada pengeluaran bulan ini."
		}
		return "Tidak ada pengeluaran minggu ini."
	}

	rule := strings.Repeat("=", reportRule)
	var b strings.Builder

	if monthly {
		b.WriteString("LAPORAN PENGELUARAN BULAN INI\n")
		fmt.Fprintf(&b, "Periode: %s %d\n", bulan[r.Start.Month()-1], r.Start.Year())
	} else {
		b.WriteString("LAPORAN PENGELUARAN MINGGU INI\n")
		fmt.Fprintf(&b, "Periode: %s - %s\n", r.Start.Format("02/01/2006"), r.End.Format("02/01/2006"))
	}
	b.WriteString(rule + "\n\n")

	indent := "  "
	if monthly {
		indent = "    "
	}
	for _, day := range r.Days {
		if monthly {
			fmt.Fprintf(&b, "[%s] - Total: %s\n", day.Date.Format("02/01/2006"), core.FormatRupiah(day.Subtotal))
		} else {
			fmt.Fprintf(&b, "[%s]\n", day.Date.Format("02/01/2006"))
		}
		for _, e := range day.Entries {
			fmt.Fprintf(&b, "%s%s - %s: %s\n", indent, e.CreatedAt.Format("15:04"), e.Description, core.FormatRupiah(e.Amount))
		}
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	if monthly {
		fmt.Fprintf(&b, "TOTAL BULAN INI: %s", core.FormatRupiah(r.Total))
	} else {
		fmt.Fprintf(&b, "TOTAL: %s", core.FormatRupiah(r.Total))
	}
	return b.String()
}

func renderNoteSaved(o services.NoteOutcome) string {
	if o.Created {
		return fmt.Sprintf("Catatan '%s' berhasil disimpan", o.Title)
	}
	return fmt.Sprintf("Catatan '%s' berhasil diperbarui", o.Title)
}

func renderNoteList(notes []core.NoteSummary) string {
	if len(notes) == 0 {
		return "Belum ada catatan tersimpan.\nGunakan /note <judul> <isi> untuk menyimpan."
	}

	rule := strings.Repeat("=", noteRule)
	var b strings.Builder
	b.WriteString("DAFTAR CATATAN\n" + rule + "\n\n")
	for _, n := range notes {
		fmt.Fprintf(&b, "- %s (update: %s)\n", n.Title, n.UpdatedAt.Format("2006-01-02"))
	}
	b.WriteString("\n" + rule + "\nKetik /lihat <judul> untuk melihat isi")
	return b.String()
}

func renderNote(n core.Note) string {
	rule := strings.Repeat("=", noteRule)
	return fmt.Sprintf("CATATAN: %s\n%s\n\n%s\n\n%s\nDibuat: %s\nUpdate: %s",
		strings.ToUpper(n.Title), rule, n.Content, rule,
		n.CreatedAt.Format("2006-01-02"), n.UpdatedAt.Format("2006-01-02"))
}

func renderViewMissing(title string) string {
	return fmt.Sprintf("'%s' tidak ditemukan.", title)
}

func renderDeleteMissing(title string) string {
	return fmt.Sprintf("Catatan '%s' tidak ditemukan", title)
}

func renderEditMissing(title string) string {
	return fmt.Sprintf("'%s' tidak ditemukan.\nPakai /note %s [isi] untuk buat baru.", title, title)
}
