package utils

import (
	"net/smtp"
	"os"
)

// SendMail envoie un mail de notification. Best-effort: un échec est loggé
// mais ne doit jamais faire échouer l'opération appelante.
func SendMail(email string, message []byte) {
	from := "notifications.locaspace@gmail.com"
	password := os.Getenv("GOOGLE_SMTP_MDP")
	to := email

	smtpHost := "smtp.gmail.com"
	smtpPort := "587"
	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{to}, message)
	if err != nil {
		LogError(err, "Erreur lors de l'envoi du mail")
		return
	}

	LogSuccess("Email envoyé avec succès")
}
