package usecases

import (
	"testing"

	"github.com/stretchr/testify/require"

	"project_asesoria/internal/entities"
)

func TestPaymentDetect(t *testing.T) {
	d := NewPaymentDetector(DefaultPaymentWeights())

	cases := []struct {
		name  string
		text  string
		media entities.MediaKind
		want  PaymentDecision
	}{
		{"plain chatter", "hola como estas", entities.MediaNone, PaymentNone},
		{"keyword alone reaches auto", "ya hice el pago", entities.MediaNone, PaymentAuto},
		{"single weak signal asks", "12345678", entities.MediaNone, PaymentAsk},
		{"bank name plus reference is auto", "transferencia por nequi ref: AB12345", entities.MediaNone, PaymentAuto},
		{"amount plus email is auto", "envie $110.000 desde maria@gmail.com", entities.MediaNone, PaymentAuto},
		{"image with bank caption is auto", "bancolombia aprobación 998877", entities.MediaImage, PaymentAuto},
		{"image with empty caption asks", "", entities.MediaImage, PaymentAsk},
		{"document with data hints is auto", "1. Nombres y apellidos: Ana\n2. Cédula: 1020304050", entities.MediaDocument, PaymentAuto},
		{"audio never counts as proof media", "", entities.MediaAudio, PaymentNone},
		{"sticker without signals is none", "", entities.MediaSticker, PaymentNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, d.Detect(tc.text, tc.media))
		})
	}
}

func TestPaymentThresholdsAreConfigurable(t *testing.T) {
	w := DefaultPaymentWeights()
	w.AutoAt = 10
	d := NewPaymentDetector(w)

	// The keyword alone scores 2, below the raised auto threshold.
	require.Equal(t, PaymentAsk, d.Detect("ya hice el pago", entities.MediaNone))
}
