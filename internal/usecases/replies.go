package usecases

import (
	"fmt"

	"project_asesoria/internal/entities"
)

// Fixed conversational texts. Wording is business content owned by the
// coordination team; keep edits in sync with them.

const (
	ReplyAskName       = "¡Hola! Un gusto conocerte, ¿cómo te llamas? 😊"
	ReplyPauseAck      = "Entendido, paso el turno a un asesor humano. 👋"
	ReplyResumeAck     = "Listo, continúo yo. 😊"
	ReplyOptOutAck     = "Entendido ✅ No te escribiré más por este canal. Si deseas reactivar, responde con */bot*."
	ReplyStickerAck    = "¡Qué lindo sticker! 😊"
	ReplyThanksAck     = "¡Genial! ¿Hay algo más en lo que pueda ayudarte?"
	ReplyPaymentAsk    = "¿Es el comprobante de pago de la mensualidad? Responde *SI* o *NO*."
	ReplyScheduleAsk   = "¿Quieres el *horario del Grupo A* o del *Grupo B*? (responde A o B)"
	ReplyScheduleWhich = "¿De qué grupo necesitas el horario? *A* o *B* (responde solo A o B)"
	ReplyProfessorAsk  = "¿De cuál docente necesitas información? Escríbeme su nombre. 😊"
	ReplyProfessorInfo = "Los docentes no comparten su número personal 🙏. Ya pasé tu solicitud a coordinación para que te contacten directamente."
	ReplyAudioSorry    = "Lo siento, no pude entender tu nota de voz."
	ReplyGenericSorry  = "Lo siento, ocurrió un error procesando tu mensaje."
	ReplyTutorialAsk   = "Antes de darte esa información, ¿conoces cómo funciona la capacitación? 🤔"

	ReplyEscalationToxic    = "🤝 Te vamos a comunicar con un asesor humano para continuar la conversación."
	ReplyEscalationDistress = "🤝 Te vamos a comunicar con un asesor humano. Si es una emergencia, por favor contacta a servicios de emergencia locales."

	DefaultOffHoursReply = "Estamos fuera de horario. Te respondemos en nuestro horario de atención."

	TutorialVideoURL = "https://www.youtube.com/watch?v=xujKKee_meI&ab_channel=NASLYSOFIABELTRANSANCHEZ"

	ReplyTutorialVideo = "Este video resume todos los aspectos importantes de la capacitación. 🎥\n" +
		TutorialVideoURL + "\n" +
		"Por favor, míralo completo y dime si tienes dudas."

	ReplyRecordingsInfo = "🎥 Todas las clases quedan *grabadas* y disponibles en la plataforma Q10. " +
		"Ingresa con tu usuario y busca la sección de grabaciones del módulo que necesitas."

	ReplyLiveClassHelp = "Para entrar a la clase en vivo usa el enlace de *Zoom* publicado en el grupo de tu horario. 🎦\n" +
		"Si el enlace no te funciona, ciérralo e ingrésalo de nuevo; recuerda usar tu nombre completo al entrar."

	ReplyConnectivityHelp = "Si la clase se corta o se congela 📶:\n" +
		"1. Cierra y vuelve a abrir Zoom.\n" +
		"2. Prueba cambiar de WiFi a datos móviles (o al revés).\n" +
		"3. Si persiste, la clase queda grabada y podrás verla en la plataforma."

	ReplyServicesOK = "✅ Todos nuestros servicios (Q10, Zoom y plataforma) están operando con normalidad."
)

const payLinkDefault = "https://wa.me/573135745542"
const payNumberDefault = "3135745542"

// PaymentRedirectMessage is the canonical "send your proof of payment here"
// reply. Empty link/number fall back to the configured defaults.
func PaymentRedirectMessage(link, number string) string {
	if link == "" {
		link = payLinkDefault
	}
	if number == "" {
		number = payNumberDefault
	}
	return "*IMPORTANTE*\n" +
		"Una vez realice el pago debe enviar *FOTO DEL SOPORTE* con *NÚMERO DE REFERENCIA DE PAGO* " +
		"o *NÚMERO DE APROBACIÓN* al WhatsApp habilitado exclusivamente para pagos " +
		fmt.Sprintf("al número 📌*%s*📌.\n\n", number) +
		"Por favor incluir los siguientes datos:\n" +
		"1. Nombres y apellidos:\n" +
		"2. Número de cédula (sin puntos, comas ni espacios):\n" +
		"3. Unidad donde labora:\n" +
		"4. Ciudad donde labora:\n" +
		"5. Número de WhatsApp:\n" +
		"6. Correo institucional:\n\n" +
		fmt.Sprintf("➡️ Enviar aquí: %s", link)
}

const PaymentInfo = "📝 *Medios de pago:*\n" +
	"• Bancolombia (Ahorros) – 91229469504\n" +
	"• BBVA (Ahorros) – 157268491\n" +
	"• Banco Popular (Ahorros) – 500804101927\n" +
	"• Davivienda (Ahorros) – 007500883082\n" +
	"• Nequi (App) – 3143068340\n" +
	"Titular: Nasly Sofía Beltrán Sánchez (C.C. 53.014.381)\n\n" +
	"🚫 *No se recibe Transfiya* — sólo transferencias desde el mismo banco.\n" +
	"👉 _Verifica la información antes de transferir._"

const MatriculationResponse = "✅ Para matricularte, primero realiza el pago de la mensualidad de **110 000 COP**.\n\n" +
	PaymentInfo + "\n\n" +
	"Una vez recibamos tu comprobante al **" + payNumberDefault + "** (" + payLinkDefault + "), " +
	"te matriculamos ese mismo día. ¿Listo para comenzar este nuevo desafío? ¡Éxitos! 🎉"

// BaseSystemPrompt seeds every completion-service conversation.
const BaseSystemPrompt = "Eres el asistente oficial de *Coordinación y Asesorías Legales y Académicas Nasly Beltrán*. " +
	"Habla cercano, claro y amable, usando **negritas**, _cursivas_, emojis y saltos de línea. " +
	"No inventes nombres de usuario; solo usa el nombre si la app te lo proporciona. " +
	"La capacitación prepara el examen de ascenso a Subintendente: clases en vivo por Zoom, " +
	"grabadas y disponibles en plataforma; mensualidad de 110 000 COP sin cláusulas de permanencia. " +
	"Si no entiendes la intención pregunta: \"¿Te refieres a nuestra capacitación o a otro tema? 🤔\""

// FewShotExamples pin the tone and format of generated replies.
var FewShotExamples = []entities.ChatTurn{
	{Role: "user", Content: "Hola"},
	{Role: "assistant", Content: ReplyAskName},
	{Role: "user", Content: "¿Qué plataforma usan?"},
	{Role: "assistant", Content: "🎥 Todas las clases se imparten en vivo por *Zoom*, quedan grabadas y disponibles para consulta."},
	{Role: "user", Content: "¿Cuánto vale?"},
	{Role: "assistant", Content: "La mensualidad es de **110 000 COP**, sin cláusulas de permanencia, y cubre el mes + 5 días del siguiente. ¿Te interesa saber cómo inscribirte? 🤔"},
	{Role: "user", Content: "No entiendo"},
	{Role: "assistant", Content: "¿Te refieres a nuestra capacitación o a otro tema? 🤔"},
}
