package mailsmodels

import (
	"fmt"

	"locaspace-backend/utils"
)

type SubscriptionExpiredData struct {
	Email        string
	OldPlanName  string
	FreePlanName string
}

func SubscriptionExpired(data SubscriptionExpiredData) {
	subject := "Subject: Votre abonnement LocaSpace a expiré \r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<div style="background-color: #1D6FA5; width: 100%%; min-height: 300px; padding: 30px; box-sizing:border-box">
		<table style="background-color: #ffffff; width: 100%%; min-height: 300px; border-radius: 10px;">
			<tbody>
				<tr>
					<td style="padding: 20px;">
						<h1 style="text-align:center; color: #333; margin-bottom: 30px;">Votre abonnement a expiré</h1>
						<div style="text-align:center; margin-bottom: 30px;">
							<p style="font-size: 16px; color: #444;">Votre abonnement au plan <strong>%s</strong> est arrivé à échéance.</p>
							<p style="font-size: 16px; color: #444;">Votre compte est repassé sur le plan <strong>%s</strong>. Vous pouvez le renouveler à tout moment depuis l'application.</p>
						</div>
						<div style="text-align:center; margin-bottom: 20px;">
							<p style="font-size: 16px; color: #444; margin-top: 30px;">L'équipe LocaSpace</p>
						</div>
					</td>
				</tr>
			</tbody>
		</table>
	</div>
`, data.OldPlanName, data.FreePlanName)

	message := []byte(subject + mime + body)
	utils.SendMail(data.Email, message)
}
