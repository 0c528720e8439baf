package synth

// Diagnostic is a one-shot, non-fatal report emitted from the audio path
// (§7 "a one-shot diagnostic is emitted through a non-blocking channel").
type Diagnostic struct {
	VoiceIndex int
	Message    string
}

const diagnosticBufferSize = 32

// diagnostics is the Engine's non-blocking diagnostic sink. A full buffer
// drops new diagnostics rather than blocking the audio thread (§7, AMBIENT
// STACK "a full channel drops the new diagnostic rather than blocking").
type diagnostics struct {
	ch chan Diagnostic
}

func newDiagnostics() diagnostics {
	return diagnostics{ch: make(chan Diagnostic, diagnosticBufferSize)}
}

func (d *diagnostics) report(voiceIndex int, message string) {
	select {
	case d.ch <- Diagnostic{VoiceIndex: voiceIndex, Message: message}:
	default:
	}
}
