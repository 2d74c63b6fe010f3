package usecases

import (
	"regexp"
	"strings"

	"project_asesoria/internal/entities"
)

// PaymentDecision is the three-way outcome of the payment-intent detector.
type PaymentDecision string

const (
	PaymentNone PaymentDecision = "none"
	PaymentAsk  PaymentDecision = "ask"
	PaymentAuto PaymentDecision = "auto"
)

// PaymentWeights are the signal point values of the additive scorer. The
// defaults reproduce the tuned production behavior; they are parameters, not
// law.
type PaymentWeights struct {
	Keyword   int
	Email     int
	Phone     int
	IDNumber  int
	Reference int
	Amount    int
	DataHint  int
	ListStyle int
	AskAt     int
	AutoAt    int
}

func DefaultPaymentWeights() PaymentWeights {
	return PaymentWeights{
		Keyword:   2,
		Email:     1,
		Phone:     1,
		IDNumber:  1,
		Reference: 1,
		Amount:    1,
		DataHint:  1,
		ListStyle: 1,
		AskAt:     1,
		AutoAt:    2,
	}
}

var payKeywordRes = []*regexp.Regexp{
	regexp.MustCompile(`comprobante|soporte|voucher|recibo|consignaci[oó]n|transferen|pago|aprobaci[oó]n|referencia`),
	regexp.MustCompile(`nequi|daviplata|bancolombia|bbva|pse|davivienda`),
}

var dataKeywordRes = []*regexp.Regexp{
	regexp.MustCompile(`nombres? y apellidos?|\bcc\b|c[eé]dula|documento`),
	regexp.MustCompile(`unidad donde labora|ciudad donde labora|\bciudad\b`),
	regexp.MustCompile(`correo|e-?mail`),
	regexp.MustCompile(`n[uú]mero de (whatsapp|celular|tel[eé]fono)`),
}

var (
	emailRe     = regexp.MustCompile(`\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)
	phone10Re   = regexp.MustCompile(`\b\d{10}\b`)
	id7to10Re   = regexp.MustCompile(`\b\d{7,10}\b`)
	referenceRe = regexp.MustCompile(`\b(ref(erencia)?|aprobaci[oó]n)[:#]?\s*[a-z0-9-]{5,}\b`)
	amountRe    = regexp.MustCompile(`(\$|\bcop\b)\s*[\d.,]{3,}`)
	listStyleRe = regexp.MustCompile(`(?:^|\n)\s*(?:1\.|2\.|3\.)`)
)

// PaymentDetector scores a message for payment/proof-of-payment intent.
type PaymentDetector struct {
	w PaymentWeights
}

func NewPaymentDetector(w PaymentWeights) *PaymentDetector {
	return &PaymentDetector{w: w}
}

// Detect combines keyword, amount, reference and personal-data signals with
// the media kind into an auto / ask / none decision.
func (d *PaymentDetector) Detect(text string, media entities.MediaKind) PaymentDecision {
	t := strings.ToLower(text)

	mediaProof := media == entities.MediaImage || media == entities.MediaDocument

	hasPayWord := anyMatch(payKeywordRes, t)
	hasDataHint := anyMatch(dataKeywordRes, t)
	hasRef := referenceRe.MatchString(t)
	hasAmount := amountRe.MatchString(t)

	score := 0
	if hasPayWord {
		score += d.w.Keyword
	}
	if emailRe.MatchString(t) {
		score += d.w.Email
	}
	if phone10Re.MatchString(t) {
		score += d.w.Phone
	}
	if id7to10Re.MatchString(t) {
		score += d.w.IDNumber
	}
	if hasRef {
		score += d.w.Reference
	}
	if hasAmount {
		score += d.w.Amount
	}
	if hasDataHint {
		score += d.w.DataHint
	}
	if listStyleRe.MatchString(t) {
		score += d.w.ListStyle
	}

	if mediaProof && (hasPayWord || hasRef || hasAmount || hasDataHint) {
		return PaymentAuto
	}
	if mediaProof && score == 0 {
		return PaymentAsk
	}
	if !mediaProof {
		if score >= d.w.AutoAt {
			return PaymentAuto
		}
		if score >= d.w.AskAt {
			return PaymentAsk
		}
	}
	return PaymentNone
}

func anyMatch(res []*regexp.Regexp, t string) bool {
	for _, re := range res {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}
