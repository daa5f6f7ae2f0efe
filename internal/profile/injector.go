// Package profile owns the generated vagrant() block inside a user's shell
// profile: it finds the block, replaces or appends it, and commits the new
// content with an atomic rename so a reader never sees a half-written file.
package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/hbjs97/vagrant-shim/internal/logging"
	"github.com/hbjs97/vagrant-shim/internal/shell"
)

// Outcome is the result kind of an Install or Uninstall call.
type Outcome string

const (
	OutcomeInstalled    Outcome = "installed"
	OutcomeCancelled    Outcome = "cancelled"
	OutcomeRemoved      Outcome = "removed"
	OutcomeNotInstalled Outcome = "not_installed"
)

// ShadowChecker reports whether a shell function with the given name is live
// in the operator's shell. The answer is advisory.
type ShadowChecker interface {
	FunctionDefined(ctx context.Context, name string) (bool, error)
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	RunConfirm(message string) (bool, error)
}

// InstallOptions controls the confirmation step of Install.
type InstallOptions struct {
	// Force skips the confirmation when a live function is detected.
	Force bool
	// OverrideRequested is set when the operator explicitly chose the
	// profile path, which also counts as consent.
	OverrideRequested bool
}

// InstallResult describes what Install or Uninstall did.
type InstallResult struct {
	Outcome Outcome
	// Path is the file that was (or would have been) written, after
	// following symlinks.
	Path  string
	Block string
	// Changed is false when the computed content equals the current content
	// and the write was skipped.
	Changed  bool
	Warnings []AmbiguousStateWarning
}

// Injector edits profile files on an afero filesystem.
type Injector struct {
	fs      afero.Fs
	shadow  ShadowChecker
	confirm Confirmer
	logger  zerolog.Logger
}

// Option configures an Injector.
type Option func(*Injector)

// WithShadowChecker installs the live-function check.
func WithShadowChecker(c ShadowChecker) Option {
	return func(i *Injector) { i.shadow = c }
}

// WithConfirmer installs the operator prompt.
func WithConfirmer(c Confirmer) Option {
	return func(i *Injector) { i.confirm = c }
}

// NewInjector creates an Injector over fsys.
func NewInjector(fsys afero.Fs, opts ...Option) *Injector {
	i := &Injector{fs: fsys, logger: logging.Get("profile")}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Install replaces the generated block in the profile at path with block, or
// appends it when none exists. block must start with the start marker line
// and end with the end marker line.
func (i *Injector) Install(ctx context.Context, path, block string, opts InstallOptions) (*InstallResult, error) {
	if err := checkBlock(block); err != nil {
		return nil, fmt.Errorf("profile.Install: %w", err)
	}

	target, err := ResolveLinks(i.fs, path)
	if err != nil {
		return nil, err
	}
	content, perm, err := readProfile(i.fs, target)
	if err != nil {
		return nil, err
	}

	if !opts.Force && !opts.OverrideRequested && i.shadowed(ctx) {
		ok := i.confirmed(fmt.Sprintf("%s 함수가 현재 셸에 이미 정의되어 있습니다. %s의 블록을 교체할까요?", shell.FuncName, target))
		if !ok {
			i.logger.Info().Str("path", target).Msg("Install cancelled by operator")
			return &InstallResult{Outcome: OutcomeCancelled, Path: target}, nil
		}
	}

	lines := splitLines(content)
	scan := FindBlocks(lines)
	result := &InstallResult{Outcome: OutcomeInstalled, Path: target, Block: block}
	if scan.Ambiguous() {
		w := AmbiguousStateWarning{Path: target, Blocks: len(scan.Blocks), Dangling: len(scan.Dangling)}
		result.Warnings = append(result.Warnings, w)
		i.logger.Warn().Str("path", target).Int("blocks", w.Blocks).Int("dangling", w.Dangling).Msg("Ambiguous generated block state")
	}

	var updated string
	if len(scan.Blocks) > 0 {
		updated = replaceSpan(lines, scan.Blocks[0], block)
	} else {
		updated = appendBlock(content, block)
	}

	if updated == content {
		i.logger.Debug().Str("path", target).Msg("Profile already up to date")
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("profile.Install: %w", err)
	}
	if err := ensureDir(i.fs, target); err != nil {
		return nil, err
	}
	if err := writeAtomic(i.fs, target, []byte(updated), perm); err != nil {
		return nil, err
	}

	result.Changed = true
	i.logger.Info().Str("path", target).Msg("Profile updated")
	return result, nil
}

// Uninstall removes the first well-formed generated block from the profile
// at path, along with the blank separator line directly before it when the
// block is the last thing in the file.
func (i *Injector) Uninstall(ctx context.Context, path string) (*InstallResult, error) {
	target, err := ResolveLinks(i.fs, path)
	if err != nil {
		return nil, err
	}
	content, perm, err := readProfile(i.fs, target)
	if err != nil {
		return nil, err
	}

	lines := splitLines(content)
	scan := FindBlocks(lines)
	result := &InstallResult{Outcome: OutcomeNotInstalled, Path: target}
	if scan.Ambiguous() {
		result.Warnings = append(result.Warnings, AmbiguousStateWarning{Path: target, Blocks: len(scan.Blocks), Dangling: len(scan.Dangling)})
	}
	if len(scan.Blocks) == 0 {
		return result, nil
	}

	span := scan.Blocks[0]
	start := span.Start
	if span.End == len(lines)-1 && start > 0 && strings.TrimSpace(lines[start-1]) == "" {
		start--
	}
	updated := strings.Join(lines[:start], "") + strings.Join(lines[span.End+1:], "")

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("profile.Uninstall: %w", err)
	}
	if err := writeAtomic(i.fs, target, []byte(updated), perm); err != nil {
		return nil, err
	}

	result.Outcome = OutcomeRemoved
	result.Changed = true
	return result, nil
}

func (i *Injector) shadowed(ctx context.Context) bool {
	if i.shadow == nil {
		return false
	}
	found, err := i.shadow.FunctionDefined(ctx, shell.FuncName)
	if err != nil {
		i.logger.Warn().Err(err).Msg("Shadow check failed, continuing")
		return false
	}
	return found
}

// confirmed treats a prompt error (including an interrupt) as a refusal.
func (i *Injector) confirmed(message string) bool {
	if i.confirm == nil {
		return false
	}
	ok, err := i.confirm.RunConfirm(message)
	if err != nil {
		i.logger.Warn().Err(err).Msg("Confirmation aborted")
		return false
	}
	return ok
}

func replaceSpan(lines []string, span Span, block string) string {
	var b strings.Builder
	for _, l := range lines[:span.Start] {
		b.WriteString(l)
	}
	b.WriteString(block)
	b.WriteString("\n")
	for _, l := range lines[span.End+1:] {
		b.WriteString(l)
	}
	return b.String()
}

func appendBlock(content, block string) string {
	var b strings.Builder
	b.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	if strings.TrimSpace(content) != "" && !strings.HasSuffix(b.String(), "\n\n") {
		b.WriteString("\n")
	}
	b.WriteString(block)
	b.WriteString("\n")
	return b.String()
}

func checkBlock(block string) error {
	lines := strings.Split(block, "\n")
	if len(lines) < 2 || lines[0] != shell.StartMarker || lines[len(lines)-1] != shell.EndMarker {
		return fmt.Errorf("block must start with %q and end with %q", shell.StartMarker, shell.EndMarker)
	}
	for _, l := range lines[1 : len(lines)-1] {
		if l == shell.StartMarker || l == shell.EndMarker {
			return fmt.Errorf("block body contains a marker line")
		}
	}
	return nil
}
