package bot

import (
	"fmt"
	"strings"
	"time"

	"cashgram/internal/analysis"
	"cashgram/internal/models"
)

const (
	msgTextOnly = "📝 Maaf, saya hanya bisa memproses pesan teks.\n\n" +
		"Silakan ketik pesan pengeluaran Anda, contoh:\n" +
		"• \"nasi goreng 20rb\"\n" +
		"• \"ojek 15k trus kopi 10rb\"\n\n" +
		"Atau gunakan command /start untuk mulai."

	msgStart = `🎉 Selamat datang di CashGram Bot! Bot pencatatan pengeluaran dengan bantuan AI.

🔐 CARA LOGIN:
Ketik: /login [nomor_hp] [password]
Contoh: /login 081234567890 rahasia

🆘 MASALAH LOGIN?
Ketik: /reset
(Gunakan jika ada masalah re-login)

🤖 FUNGSI BOT YANG TERSEDIA:
• 💰 Input pengeluaran: "makan siang 25rb"
• 📊 Analisis pengeluaran: /analisis minggu atau /analisis bulan
• 📈 Cek pengeluaran hari ini: /saldo
• 👋 Logout dari bot: /logout

Mulai dengan /login untuk menggunakan semua fitur! 🚀`

	msgLoginFormat = "❌ Format salah. Gunakan: /login [nomor_hp] [password]"
	msgLoginFailed = "❌ Login gagal. Periksa nomor HP dan password Anda."
	msgLoginError  = "❌ Terjadi kesalahan saat login. Coba lagi nanti."

	msgReset = `🔄 Reset berhasil! Data Telegram Anda sudah dihapus.

Sekarang Anda bisa login ulang dengan:
/login [nomor_hp] [password]`
	msgResetError = "❌ Terjadi kesalahan saat reset. Coba lagi nanti."

	msgNotLoggedIn = "❌ Anda belum login. Ketik /start untuk memulai."

	msgLogout = `👋 Anda telah logout dari CashGram Bot.

Terima kasih telah menggunakan layanan kami!
Ketik /start untuk login kembali.`
	msgLogoutError = "❌ Terjadi kesalahan saat logout. Coba lagi nanti."

	msgAnalysisError = "❌ Gagal menganalisis data.\n\n💡 Alternatif: Gunakan /saldo untuk cek pengeluaran hari ini."
	msgBalanceError  = "❌ Gagal mengambil data saldo. Coba lagi nanti."
	msgSaveError     = "❌ Gagal menyimpan pengeluaran. Coba lagi nanti."
)

// markdownEscaper escapes the characters that open entities in Telegram's
// legacy Markdown. User text must not leave an entity unbalanced.
var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "[", `\[`, "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func loginSuccess(name string) string {
	if name == "" {
		name = "kembali"
	}
	return fmt.Sprintf(`✅ Login berhasil! Selamat datang %s!

Sekarang Anda bisa:
💰 Input pengeluaran: "nasi goreng 20rb"
📊 Lihat analisis: /analisis minggu
📈 Cek pengeluaran hari ini: /saldo`, name)
}

func usageHint(text string) string {
	return fmt.Sprintf(`❓ Maaf, saya tidak bisa memahami input "%s".

Contoh format yang benar:
• "nasi goreng 20rb"
• "ojek ke mall 15k"
• "beli pulsa 50 ribu"

Atau gunakan command:
/analisis minggu - Analisis minggu ini
/saldo - Cek pengeluaran hari ini`, text)
}

func balance(expenses []models.Expense) string {
	var total int64
	for _, e := range expenses {
		total += e.Amount
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📈 *Pengeluaran Hari Ini*\n💰 Total: %s\n📊 Transaksi: %d\n", analysis.Rupiah(total), len(expenses))
	if len(expenses) > 0 {
		b.WriteString("\n")
	}
	for _, e := range expenses {
		fmt.Fprintf(&b, "• %s: %s\n", escapeMarkdown(e.Description), analysis.Rupiah(e.Amount))
	}
	return strings.TrimRight(b.String(), "\n")
}

func savedOne(e *models.Expense, now time.Time) string {
	icon := "💰"
	if e.Category != nil && e.Category.Icon != "" {
		icon = e.Category.Icon
	}
	return fmt.Sprintf(`✅ *Pengeluaran berhasil dicatat!*

%s %s - %s
💵 %s
📅 %s

Ketik /saldo untuk cek total hari ini 📊`, icon, escapeMarkdown(e.CategoryName()), escapeMarkdown(e.Description),
		analysis.Rupiah(e.Amount), analysis.Date(now))
}

func savedMany(saved []*models.Expense, now time.Time) string {
	var total int64
	lines := make([]string, 0, len(saved))
	for _, e := range saved {
		total += e.Amount
		icon := "💰"
		if e.Category != nil && e.Category.Icon != "" {
			icon = e.Category.Icon
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s", icon, escapeMarkdown(e.Description), analysis.Rupiah(e.Amount)))
	}
	return fmt.Sprintf(`✅ *Berhasil mencatat %d pengeluaran:*

%s

💰 *Total: %s*
📅 %s

Ketik /saldo untuk cek total hari ini 📊`, len(saved), strings.Join(lines, "\n"), analysis.Rupiah(total), analysis.Date(now))
}
