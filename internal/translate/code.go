// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"fmt"
	"strings"
)

const codeSystemPrompt = `You are an expert polyglot programmer.
Rewrite the user's code snippet from %s into idiomatic %s.
Keep the behavior identical, keep comments and translate them if they are prose.
Return only the code with no fences and no commentary.`

// TranslateCode converts a code sample from one programming language to
// another. Markdown fences in the provider output are stripped.
func (t *Translator) TranslateCode(ctx context.Context, sourceLang, targetLang, code string) Result {
	if strings.TrimSpace(code) == "" {
		return Result{SourceText: code, OK: false}
	}
	system := fmt.Sprintf(codeSystemPrompt, sourceLang, targetLang)
	out, err := t.call(ctx, system, code)
	if err != nil {
		t.logger.Warn("code translation failed",
			"source_lang", sourceLang, "target_lang", targetLang, "err", err)
		return Result{SourceText: code, OK: false}
	}
	out = stripCodeFences(out)
	if out == "" {
		return Result{SourceText: code, OK: false}
	}
	return Result{SourceText: code, TargetText: out, OK: true}
}

// stripCodeFences removes a surrounding ```lang ... ``` block if present.
func stripCodeFences(out string) string {
	out = strings.TrimSpace(out)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		return out
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
