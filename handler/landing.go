package handler

import (
	"html/template"
	"net/http"
)

var landingPage = template.Must(template.New("landing").Parse(`<html>
	<head>
		<title>WhatsApp Web Integration</title>
	</head>
	<body>
		<h1>WhatsApp Web Connection Status</h1>
		<div id="status"></div>
		<div id="qr_code"></div>

		<script>
			const params = new URLSearchParams({phoneNumber: {{.PhoneNumber}}, message: {{.Message}}});

			fetch('/check-whatsapp?' + params.toString())
				.then(response => response.json())
				.then(data => {
					if (data.status === 'connected') {
						document.getElementById('status').innerHTML = '<p>WhatsApp Web is connected!</p>';
						return;
					}
					document.getElementById('status').innerHTML = '<p>WhatsApp Web is not connected.</p>';

					fetch('/qr')
						.then(response => response.json())
						.then(data => {
							if (data.qr_code) {
								document.getElementById('qr_code').innerHTML = '<img src="' + data.qr_code + '" alt="Scan this QR Code">';
							}
						});
				});
		</script>
	</body>
</html>
`))

type landingData struct {
	PhoneNumber string
	Message     string
}

func (h *Handler) handleLandingPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := landingPage.Execute(w, landingData{
		PhoneNumber: h.opts.DemoPhoneNumber,
		Message:     h.opts.DemoMessage,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to render landing page")
	}
}
