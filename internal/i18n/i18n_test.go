package i18n

import "testing"

// requiredIDs is the message surface the UI depends on. Every locale must at
// least resolve these in English.
var requiredIDs = []string{
	"app.title",
	"tui.label_private",
	"tui.label_public",
	"tui.hint_private",
	"tui.hint_public",
	"tui.placeholder_private",
	"tui.placeholder_public",
	"tui.help",
	"tui.save_prompt_private",
	"tui.save_prompt_public",
	"tui.save_help",
	"status.ready",
	"status.generating",
	"status.success",
	"status.error",
	"status.initializing",
	"status.running",
	"status.extracting_public",
	"status.exporting_public",
	"status.done",
	"msg.copy_success",
	"msg.copy_failed",
	"msg.save_success",
	"msg.save_failed",
	"msg.no_key",
	"error.not_found",
	"error.no_exec_permission",
	"error.no_private_key",
	"error.derive_failed",
	"error.timeout",
	"error.tool_failed",
	"error.unexpected",
}

func TestEnglishTableIsComplete(t *testing.T) {
	Init("en")
	for _, id := range requiredIDs {
		if got := T(id); got == id || got == "" {
			t.Errorf("message %q is missing from the English locale", id)
		}
	}
}

func TestGermanTableIsComplete(t *testing.T) {
	Init("de")
	defer Init("en")
	for _, id := range requiredIDs {
		if got := T(id); got == id || got == "" {
			t.Errorf("message %q is missing from the German locale", id)
		}
	}
}

func TestUnknownIDFallsBackToID(t *testing.T) {
	Init("en")
	if got := T("does.not.exist"); got != "does.not.exist" {
		t.Errorf("T on unknown ID = %q, want the ID itself", got)
	}
}

func TestFormatArgs(t *testing.T) {
	Init("en")
	got := T("error.tool_failed", "boom")
	if got == "error.tool_failed" {
		t.Fatal("message missing")
	}
	if got == T("error.tool_failed") {
		t.Errorf("args not applied: %q", got)
	}
}

func TestSetLangSwitches(t *testing.T) {
	Init("en")
	en := T("status.ready")
	SetLang("de")
	defer Init("en")
	if de := T("status.ready"); de == en {
		t.Errorf("language switch had no effect: %q", de)
	}
}

func TestPlaceholderTextIsExact(t *testing.T) {
	Init("en")
	if got := T("error.derive_failed"); got != "Unable to derive Public Key" {
		t.Errorf("derive placeholder = %q", got)
	}
}
