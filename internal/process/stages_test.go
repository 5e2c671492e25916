package process

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xpand/internal/event"
	"github.com/roach88/xpand/internal/match"
	"github.com/roach88/xpand/internal/render"
)

func TestAltCode(t *testing.T) {
	s := NewAltCode(true)

	out, _ := runStage(s, special(1, event.KeyAlt, event.Pressed))
	assert.Equal(t, event.KindKeyboard, out.Kind())

	for _, k := range []event.Key{event.KeyNumpad6, event.KeyNumpad5} {
		out, _ = runStage(s, special(2, k, event.Pressed))
		assert.True(t, out.IsNoop())
		out, _ = runStage(s, special(2, k, event.Released))
		assert.True(t, out.IsNoop())
	}

	out, _ = runStage(s, special(3, event.KeyAlt, event.Released))
	kb, ok := out.Type.(event.Keyboard)
	require.True(t, ok)
	assert.Equal(t, "A", kb.Value)
	assert.Equal(t, event.Pressed, kb.Status)
	assert.Equal(t, event.SourceID(3), out.SourceID)
}

func TestAltCode_RejectsUnusableCodes(t *testing.T) {
	enter := func(s *AltCode, digits string) event.Event {
		runStage(s, special(1, event.KeyAlt, event.Pressed))
		for _, d := range digits {
			k := event.Key("numpad" + string(d))
			runStage(s, special(2, k, event.Pressed))
			runStage(s, special(2, k, event.Released))
		}
		out, _ := runStage(s, special(3, event.KeyAlt, event.Released))
		return out
	}

	tests := []struct {
		name   string
		digits string
	}{
		{"zero", "0"},
		{"surrogate", "55296"},
		{"above max rune", "1114112"},
		{"long run stays bounded", "99999999999999999999999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := enter(NewAltCode(true), tt.digits)
			assert.True(t, out.IsNoop())
		})
	}

	out := enter(NewAltCode(true), "00000650")
	kb, ok := out.Type.(event.Keyboard)
	require.True(t, ok)
	assert.Equal(t, "A", kb.Value, "digits past the seventh are ignored")
}

func TestAltCode_Passthrough(t *testing.T) {
	disabled := NewAltCode(false)
	runStage(disabled, special(1, event.KeyAlt, event.Pressed))
	out, _ := runStage(disabled, special(2, event.KeyNumpad1, event.Pressed))
	assert.False(t, out.IsNoop())

	s := NewAltCode(true)
	runStage(s, special(1, event.KeyAlt, event.Pressed))
	out, _ = runStage(s, key(2, "f"))
	assert.Equal(t, "f", out.Type.(event.Keyboard).Value, "a non numpad key ends the sequence")
	out, _ = runStage(s, special(3, event.KeyAlt, event.Released))
	assert.Equal(t, event.KeyAlt, out.Type.(event.Keyboard).Key)
}

func TestDisable_Requests(t *testing.T) {
	s := NewDisable(DisableOptions{})
	assert.True(t, s.Enabled())

	out, _ := runStage(s, event.New(1, event.DisableRequest{}))
	assert.Equal(t, event.KindDisabled, out.Kind())
	assert.False(t, s.Enabled())

	out, _ = runStage(s, event.New(2, event.DisableRequest{}))
	assert.True(t, out.IsNoop(), "no change, nothing to report")

	out, _ = runStage(s, key(3, "a"))
	assert.True(t, out.IsNoop(), "typing is ignored while disabled")
	out, _ = runStage(s, event.New(3, event.Mouse{Button: event.MouseLeft, Status: event.Pressed}))
	assert.True(t, out.IsNoop())

	out, _ = runStage(s, event.New(4, event.ToggleRequest{}))
	assert.Equal(t, event.KindEnabled, out.Kind())

	out, _ = runStage(s, event.New(5, event.EnableRequest{}))
	assert.True(t, out.IsNoop())
}

func TestDisable_DoublePress(t *testing.T) {
	now := fixedNow
	s := NewDisable(DisableOptions{
		ToggleKey: event.KeyAlt,
		Interval:  300 * time.Millisecond,
		Now:       func() time.Time { return now },
	})

	tap := func() event.Event {
		runStage(s, special(1, event.KeyAlt, event.Pressed))
		out, _ := runStage(s, special(1, event.KeyAlt, event.Released))
		return out
	}

	out := tap()
	assert.Equal(t, event.KindKeyboard, out.Kind())
	now = now.Add(100 * time.Millisecond)
	out = tap()
	assert.Equal(t, event.KindDisabled, out.Kind())

	// Too slow.
	now = now.Add(time.Second)
	tap()
	now = now.Add(time.Second)
	out = tap()
	assert.True(t, out.IsNoop(), "still disabled")

	// Another key in between breaks the sequence.
	now = now.Add(time.Second)
	tap()
	runStage(s, key(2, "x"))
	now = now.Add(50 * time.Millisecond)
	tap()
	assert.False(t, s.Enabled())

	now = now.Add(50 * time.Millisecond)
	out = tap()
	assert.Equal(t, event.KindEnabled, out.Kind())
}

func TestNotification(t *testing.T) {
	s := NewNotification(true)

	out, dispatched := runStage(s, event.New(1, event.Enabled{}))
	assert.Equal(t, event.IconStatusChange{Status: event.IconEnabled}, out.Type)
	require.Len(t, dispatched, 1)
	assert.Equal(t, event.ShowNotification{Message: "Expansion enabled"}, dispatched[0].Type)

	out, dispatched = runStage(s, event.New(2, event.SecureInputEnabled{AppName: "Terminal"}))
	assert.Equal(t, event.IconStatusChange{Status: event.IconSecureInput}, out.Type)
	require.Len(t, dispatched, 1)
	assert.Contains(t, dispatched[0].Type.(event.ShowNotification).Message, "Terminal")

	out, dispatched = runStage(s, event.New(3, event.SecureInputDisabled{}))
	assert.Equal(t, event.IconStatusChange{Status: event.IconEnabled}, out.Type)
	assert.Empty(t, dispatched)

	quiet := NewNotification(false)
	out, dispatched = runStage(quiet, event.New(4, event.Disabled{}))
	assert.Equal(t, event.IconStatusChange{Status: event.IconDisabled}, out.Type)
	assert.Empty(t, dispatched)
}

func TestContextMenu(t *testing.T) {
	s := NewContextMenu()

	out, dispatched := runStage(s, event.New(1, event.ContextMenuClicked{ItemID: event.MenuItemToggle}))
	assert.True(t, out.IsNoop())
	require.Len(t, dispatched, 1)
	assert.Equal(t, event.KindToggleRequest, dispatched[0].Kind())

	out, _ = runStage(s, event.New(2, event.ContextMenuClicked{ItemID: event.MenuItemConfig}))
	assert.Equal(t, event.KindShowConfigFolder, out.Kind())

	out, dispatched = runStage(s, event.New(3, event.ContextMenuClicked{ItemID: event.MenuItemExit}))
	assert.True(t, out.IsNoop())
	assert.Equal(t, event.ExitRequested{Mode: event.ExitAllProcesses}, dispatched[0].Type)

	out, dispatched = runStage(s, event.New(4, event.ContextMenuClicked{ItemID: "mystery"}))
	assert.True(t, out.IsNoop())
	assert.Empty(t, dispatched)
}

func TestHotKeyAndExit(t *testing.T) {
	s := NewHotKey(7)
	out, _ := runStage(s, event.New(1, event.HotKey{ID: 7}))
	assert.Equal(t, event.KindSearchRequested, out.Kind())
	out, _ = runStage(s, event.New(1, event.HotKey{ID: 8}))
	assert.True(t, out.IsNoop())

	none := NewHotKey(NoSearchHotKey)
	out, _ = runStage(none, event.New(1, event.HotKey{ID: -1}))
	assert.True(t, out.IsNoop())

	out, _ = runStage(Exit{}, event.New(2, event.ExitRequested{Mode: event.RestartWorker}))
	assert.Equal(t, event.Exit{Mode: event.RestartWorker}, out.Type)
	out, _ = runStage(Exit{}, event.New(2, event.ExitRequested{}))
	assert.Equal(t, event.Exit{Mode: event.ExitAllProcesses}, out.Type)
}

func typeInto(s Middleware, id *event.SourceID, text string) []event.Event {
	var outs []event.Event
	for _, r := range text {
		*id++
		out, _ := runStage(s, key(*id, string(r)))
		outs = append(outs, out)
	}
	return outs
}

func detections(outs []event.Event) []event.MatchesDetected {
	var found []event.MatchesDetected
	for _, o := range outs {
		if md, ok := o.Type.(event.MatchesDetected); ok {
			found = append(found, md)
		}
	}
	return found
}

func TestMatching_Detects(t *testing.T) {
	holder := newHolder(
		match.Match{Triggers: []string{":date"}, Replace: "x", LeftWord: true, RightWord: true},
		match.Match{Regex: `:sum\((?P<a>\d+)\)`, Replace: "{{a}}"},
	)
	s := NewMatching(holder, MatcherOptions{})
	var id event.SourceID

	found := detections(typeInto(s, &id, "hi :date "))
	require.Len(t, found, 1)
	assert.Equal(t, []event.DetectedMatch{{ID: 1, Trigger: ":date", LeftSeparator: " ", RightSeparator: " "}}, found[0].Matches)
	assert.False(t, found[0].IsSearch)

	found = detections(typeInto(s, &id, ":sum(12)"))
	require.Len(t, found, 1)
	assert.Equal(t, int32(2), found[0].Matches[0].ID)
	assert.Equal(t, map[string]string{"a": "12"}, found[0].Matches[0].Args)
}

func TestMatching_MultiRuneValueKeepsTrailingProgress(t *testing.T) {
	holder := newHolder(
		match.Match{Triggers: []string{"ab"}, Replace: "x"},
		match.Match{Triggers: []string{"cd"}, Replace: "y"},
	)
	s := NewMatching(holder, MatcherOptions{})

	out, _ := runStage(s, key(1, "abc"))
	md, ok := out.Type.(event.MatchesDetected)
	require.True(t, ok)
	assert.Equal(t, "ab", md.Matches[0].Trigger)

	out, _ = runStage(s, key(2, "d"))
	md, ok = out.Type.(event.MatchesDetected)
	require.True(t, ok, "c typed in the same event still counts toward cd")
	assert.Equal(t, "cd", md.Matches[0].Trigger)
}

func TestMatching_IgnoresReleasesAndSilentKeys(t *testing.T) {
	holder := newHolder(match.Match{Triggers: []string{"ab"}, Replace: "x"})
	s := NewMatching(holder, MatcherOptions{})

	runStage(s, key(1, "a"))
	runStage(s, special(2, event.KeyShift, event.Pressed))
	runStage(s, event.New(3, event.Keyboard{Key: event.KeyOther, Value: "z", Status: event.Released}))
	out, _ := runStage(s, key(4, "b"))
	assert.Equal(t, event.KindMatchesDetected, out.Kind())
}

func TestMatching_BackspaceStepsBack(t *testing.T) {
	holder := newHolder(match.Match{Triggers: []string{":hello"}, Replace: "x"})
	s := NewMatching(holder, MatcherOptions{HistorySize: 5})
	var id event.SourceID

	typeInto(s, &id, ":helx")
	runStage(s, special(id+1, event.KeyBackspace, event.Pressed))
	id++

	found := detections(typeInto(s, &id, "lo"))
	require.Len(t, found, 1)
	assert.Equal(t, ":hello", found[0].Matches[0].Trigger)
}

func TestMatching_NavigationAndMouseReset(t *testing.T) {
	holder := newHolder(match.Match{Triggers: []string{"abc"}, Replace: "x"})
	s := NewMatching(holder, MatcherOptions{})
	var id event.SourceID

	typeInto(s, &id, "ab")
	runStage(s, special(10, event.KeyArrowLeft, event.Pressed))
	assert.Empty(t, detections(typeInto(s, &id, "c")))

	typeInto(s, &id, "ab")
	runStage(s, event.New(11, event.Mouse{Button: event.MouseLeft, Status: event.Pressed}))
	assert.Empty(t, detections(typeInto(s, &id, "c")))

	typeInto(s, &id, "ab")
	runStage(s, event.New(12, event.Mouse{Button: event.MouseLeft, Status: event.Released}))
	assert.Len(t, detections(typeInto(s, &id, "c")), 1)
}

func TestMatching_DetectionResetsEveryMatcher(t *testing.T) {
	holder := newHolder(
		match.Match{Triggers: []string{"ab"}, Replace: "x"},
		match.Match{Regex: `abcd`, Replace: "y"},
	)
	s := NewMatching(holder, MatcherOptions{})
	var id event.SourceID

	found := detections(typeInto(s, &id, "abcd"))
	require.Len(t, found, 1, "the regex buffer was cleared by the rolling match")
	assert.Equal(t, int32(1), found[0].Matches[0].ID)
}

func TestMatching_RebuildsOnReload(t *testing.T) {
	holder := newHolder(match.Match{Triggers: []string{"old"}, Replace: "x"})
	s := NewMatching(holder, MatcherOptions{})
	var id event.SourceID

	typeInto(s, &id, "ne")
	holder.Swap(match.NewStore([]match.Match{{Triggers: []string{"new"}, Replace: "y"}}, nil))

	assert.Empty(t, detections(typeInto(s, &id, "w")), "history from the old store is dropped")
	assert.Empty(t, detections(typeInto(s, &id, "old")))
	assert.Len(t, detections(typeInto(s, &id, "new")), 1)
}

func TestSearch(t *testing.T) {
	holder := newHolder(
		match.Match{Triggers: []string{":a"}, Replace: "a"},
		match.Match{Triggers: []string{":b"}, Replace: "b"},
	)
	out, _ := runStage(NewSearch(holder), event.New(1, event.SearchRequested{}))

	md, ok := out.Type.(event.MatchesDetected)
	require.True(t, ok)
	assert.True(t, md.IsSearch)
	assert.Equal(t, []event.DetectedMatch{{ID: 1}, {ID: 2}}, md.Matches)
}

func TestMatchSelect_Policy(t *testing.T) {
	holder := newHolder(
		match.Match{Triggers: []string{":a"}, Replace: "a", Label: "Alpha"},
		match.Match{Triggers: []string{":a"}, Replace: "b", SearchTerms: []string{"bee"}},
	)
	sel := &fakeSelector{id: 2, ok: true}
	seq := event.NewSequencerAt(50)
	s := NewMatchSelect(holder, sel, seq)

	out, dispatched := runStage(s, event.New(1, event.MatchesDetected{Matches: []event.DetectedMatch{{ID: 99}}}))
	assert.True(t, out.IsNoop(), "unknown ids are not valid candidates")
	assert.Empty(t, dispatched)

	out, dispatched = runStage(s, event.New(2, event.MatchesDetected{Matches: []event.DetectedMatch{{ID: 1, Trigger: ":a"}, {ID: 99}}}))
	assert.Equal(t, event.MatchSelected{Chosen: event.DetectedMatch{ID: 1, Trigger: ":a"}}, out.Type)
	assert.Empty(t, dispatched)
	assert.Nil(t, sel.seen, "a single candidate needs no selector")

	out, dispatched = runStage(s, event.New(3, event.MatchesDetected{Matches: []event.DetectedMatch{
		{ID: 1, Trigger: ":a"}, {ID: 2, Trigger: ":a"},
	}}))
	assert.Equal(t, event.MatchSelected{Chosen: event.DetectedMatch{ID: 2, Trigger: ":a"}}, out.Type)
	assert.Equal(t, []Candidate{
		{ID: 1, Label: "Alpha", Trigger: ":a"},
		{ID: 2, Label: ":a", Trigger: ":a", SearchTerms: []string{"bee"}},
	}, sel.seen)
	require.Len(t, dispatched, 1)
	assert.Equal(t, event.DiscardBetween{StartID: 51, EndID: 52}, dispatched[0].Type)
}

func TestMatchSelect_SearchAlwaysAsks(t *testing.T) {
	holder := newHolder(match.Match{Triggers: []string{":a"}, Replace: "a"})
	sel := &fakeSelector{id: 1, ok: true}
	s := NewMatchSelect(holder, sel, event.NewSequencer())

	out, _ := runStage(s, event.New(1, event.MatchesDetected{Matches: []event.DetectedMatch{{ID: 1}}, IsSearch: true}))
	assert.Equal(t, event.KindMatchSelected, out.Kind())
	assert.Len(t, sel.seen, 1)
}

func TestMatchSelect_AbortAndErrors(t *testing.T) {
	holder := newHolder(
		match.Match{Triggers: []string{":a"}, Replace: "a"},
		match.Match{Triggers: []string{":a"}, Replace: "b"},
	)
	two := event.MatchesDetected{Matches: []event.DetectedMatch{{ID: 1}, {ID: 2}}}

	tests := []struct {
		name string
		sel  Selector
	}{
		{"dismissed", &fakeSelector{ok: false}},
		{"failed", &fakeSelector{err: errors.New("no display")}},
		{"unknown id", &fakeSelector{id: 5, ok: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, dispatched := runStage(NewMatchSelect(holder, tt.sel, event.NewSequencer()), event.New(1, two))
			assert.True(t, out.IsNoop())
			require.Len(t, dispatched, 1, "the selector window is discarded even when cancelled")
			assert.Equal(t, event.KindDiscardBetween, dispatched[0].Kind())
		})
	}

	out, dispatched := runStage(NewMatchSelect(holder, nil, event.NewSequencer()), event.New(1, two))
	assert.True(t, out.IsNoop())
	assert.Empty(t, dispatched)
}

func TestCauseCompensate(t *testing.T) {
	chosen := event.DetectedMatch{ID: 1, Trigger: ":a", LeftSeparator: " ", RightSeparator: "."}
	out, dispatched := runStage(CauseCompensate{}, event.New(4, event.MatchSelected{Chosen: chosen}))

	assert.Equal(t, event.TriggerCompensation{Trigger: ":a", LeftSeparator: " ", RightSeparator: "."}, out.Type)
	require.Len(t, dispatched, 1)
	assert.Equal(t, event.New(4, event.CauseCompensatedMatch{Match: chosen}), dispatched[0])

	out, dispatched = runStage(CauseCompensate{}, event.New(5, event.MatchSelected{Chosen: event.DetectedMatch{ID: 1}}))
	assert.Equal(t, event.CauseCompensatedMatch{Match: event.DetectedMatch{ID: 1}}, out.Type)
	assert.Empty(t, dispatched)
}

func TestMultiplex(t *testing.T) {
	holder := newHolder(
		match.Match{Triggers: []string{":md"}, Markdown: "**b**", ForceMode: event.ForceClipboard},
		match.Match{Triggers: []string{":img"}, ImagePath: "/img.png"},
	)
	s := NewMultiplex(holder)

	dm := event.DetectedMatch{ID: 1, Trigger: ":md", RightSeparator: " ", Args: map[string]string{"x": "y"}}
	out, _ := runStage(s, event.New(1, event.CauseCompensatedMatch{Match: dm}))
	assert.Equal(t, event.RenderingRequested{
		MatchID:        1,
		Trigger:        ":md",
		RightSeparator: " ",
		TriggerArgs:    map[string]string{"x": "y"},
		Format:         event.FormatMarkdown,
		ForceMode:      event.ForceClipboard,
	}, out.Type)

	out, _ = runStage(s, event.New(1, event.CauseCompensatedMatch{Match: event.DetectedMatch{ID: 2}}))
	assert.Equal(t, event.ImageRequested{MatchID: 2, ImagePath: "/img.png"}, out.Type)

	out, _ = runStage(s, event.New(1, event.CauseCompensatedMatch{Match: event.DetectedMatch{ID: 3}}))
	assert.True(t, out.IsNoop())
}

func TestRender_Stage(t *testing.T) {
	holder := match.NewHolder(match.NewStore([]match.Match{
		{Triggers: []string{":date"}, Replace: "{{d}} by {{me}}", Vars: []render.Variable{
			{Name: "d", Type: "date", Params: render.Params{"format": "%Y-%m-%d"}},
		}},
		{Triggers: []string{":hi"}, Replace: "hello there", PropagateCase: true},
		{Regex: `:g\((?P<name>\w+)\)`, Replace: "hi {{name}}"},
		{Triggers: []string{":bad"}, Replace: "{{missing}}"},
		{Triggers: []string{":ask"}, Replace: "{{c}}", Vars: []render.Variable{
			{Name: "c", Type: "choice", Params: render.Params{"values": []any{"a"}}},
		}},
	}, []render.Variable{{Name: "me", Type: "echo", Params: render.Params{"echo": "Ada"}}}))

	renderer := render.NewRenderer(render.Builtins(render.Collaborators{
		Now:     func() time.Time { return fixedNow },
		Chooser: cancelChooser{},
	})...)
	s := NewRender(holder, renderer)

	out, _ := runStage(s, event.New(1, event.RenderingRequested{MatchID: 1, Trigger: ":date", RightSeparator: " ", Format: event.FormatText}))
	assert.Equal(t, event.Rendered{MatchID: 1, Body: "2024-03-05 by Ada ", Format: event.FormatText}, out.Type)

	out, _ = runStage(s, event.New(1, event.RenderingRequested{MatchID: 2, Trigger: ":HI", Format: event.FormatText}))
	assert.Equal(t, "HELLO THERE", out.Type.(event.Rendered).Body)

	out, _ = runStage(s, event.New(1, event.RenderingRequested{MatchID: 3, TriggerArgs: map[string]string{"name": "Bob"}}))
	assert.Equal(t, "hi Bob", out.Type.(event.Rendered).Body)

	out, _ = runStage(s, event.New(1, event.RenderingRequested{MatchID: 4}))
	pe, ok := out.Type.(event.ProcessingError)
	require.True(t, ok)
	assert.Contains(t, pe.Reason, "MISSING_VARIABLE")

	out, _ = runStage(s, event.New(1, event.RenderingRequested{MatchID: 5}))
	assert.True(t, out.IsNoop(), "a cancelled choice expands nothing")
}

type cancelChooser struct{}

func (cancelChooser) Choose(context.Context, []string) (int, bool, error) { return 0, false, nil }

func TestImageResolve(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/images/logo.png", []byte("png"), 0o644))
	require.NoError(t, fs.MkdirAll("/cfg/dir.png", 0o755))
	s := NewImageResolve(fs, "/cfg")

	out, _ := runStage(s, event.New(1, event.ImageRequested{MatchID: 1, ImagePath: "$CONFIG/images/logo.png"}))
	assert.Equal(t, event.ImageResolved{ImagePath: "/cfg/images/logo.png"}, out.Type)

	out, _ = runStage(s, event.New(1, event.ImageRequested{MatchID: 1, ImagePath: "/nope.png"}))
	assert.Equal(t, event.KindProcessingError, out.Kind())

	out, _ = runStage(s, event.New(1, event.ImageRequested{MatchID: 1, ImagePath: "$CONFIG/dir.png"}))
	assert.Equal(t, event.KindProcessingError, out.Kind())
}

func TestCursorHint(t *testing.T) {
	out, dispatched := runStage(CursorHintStage{}, event.New(1, event.Rendered{Body: "<b>$|$</b> ", Format: event.FormatText}))
	assert.Equal(t, "<b></b> ", out.Type.(event.Rendered).Body)
	require.Len(t, dispatched, 1)
	assert.Equal(t, event.CursorHintCompensation{BackCount: 5}, dispatched[0].Type)

	out, dispatched = runStage(CursorHintStage{}, event.New(1, event.Rendered{Body: "né$|$é", Format: event.FormatText}))
	assert.Equal(t, "néé", out.Type.(event.Rendered).Body)
	assert.Equal(t, event.CursorHintCompensation{BackCount: 1}, dispatched[0].Type)

	_, dispatched = runStage(CursorHintStage{}, event.New(1, event.Rendered{Body: "plain", Format: event.FormatText}))
	assert.Empty(t, dispatched)

	out, dispatched = runStage(CursorHintStage{}, event.New(1, event.Rendered{Body: "*$|$*", Format: event.FormatMarkdown}))
	assert.Equal(t, "*$|$*", out.Type.(event.Rendered).Body)
	assert.Empty(t, dispatched)
}

func TestUndo(t *testing.T) {
	s := NewUndo(true)

	runStage(s, event.New(1, event.TriggerCompensation{Trigger: ":hi", RightSeparator: " "}))
	runStage(s, event.New(1, event.Rendered{Body: "hello ", Format: event.FormatText}))
	runStage(s, special(2, event.KeyShift, event.Pressed))
	out, _ := runStage(s, special(3, event.KeyBackspace, event.Pressed))
	assert.Equal(t, event.Undo{Trigger: ":hi ", Replace: "hello "}, out.Type)

	out, _ = runStage(s, special(4, event.KeyBackspace, event.Pressed))
	assert.Equal(t, event.KindKeyboard, out.Kind(), "undo happens once")
}

func TestUndo_Forgets(t *testing.T) {
	expand := func(s *Undo) {
		runStage(s, event.New(1, event.TriggerCompensation{Trigger: ":hi"}))
		runStage(s, event.New(1, event.Rendered{Body: "hello", Format: event.FormatText}))
	}

	tests := []struct {
		name  string
		after event.Event
	}{
		{"typing", key(2, "x")},
		{"click", event.New(2, event.Mouse{Button: event.MouseLeft, Status: event.Pressed})},
		{"cursor hint", event.New(1, event.CursorHintCompensation{BackCount: 2})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewUndo(true)
			expand(s)
			runStage(s, tt.after)
			out, _ := runStage(s, special(3, event.KeyBackspace, event.Pressed))
			assert.Equal(t, event.KindKeyboard, out.Kind())
		})
	}

	s := NewUndo(true)
	runStage(s, event.New(1, event.TriggerCompensation{Trigger: ":del"}))
	runStage(s, event.New(1, event.Rendered{Body: "", Format: event.FormatText}))
	out, _ := runStage(s, special(3, event.KeyBackspace, event.Pressed))
	assert.Equal(t, event.KindKeyboard, out.Kind(), "an empty expansion leaves nothing to undo")

	s = NewUndo(true)
	runStage(s, event.New(1, event.TriggerCompensation{Trigger: ":md"}))
	runStage(s, event.New(1, event.Rendered{Body: "<b>x</b>", Format: event.FormatHTML}))
	out, _ = runStage(s, special(3, event.KeyBackspace, event.Pressed))
	assert.Equal(t, event.KindKeyboard, out.Kind(), "rich text cannot be undone")

	off := NewUndo(false)
	expand(off)
	out, _ = runStage(off, special(3, event.KeyBackspace, event.Pressed))
	assert.Equal(t, event.KindKeyboard, out.Kind())
}

func TestAction(t *testing.T) {
	seq := event.NewSequencerAt(41)
	s := NewAction(seq)

	tests := []struct {
		in   event.Type
		want event.Type
	}{
		{event.Rendered{Body: "hi", Format: event.FormatText, ForceMode: event.ForceKeys}, event.TextInject{Text: "hi", ForceMode: event.ForceKeys}},
		{event.Rendered{Body: "*hi*", Format: event.FormatMarkdown}, event.MarkdownInject{Markdown: "*hi*"}},
		{event.Rendered{Body: "<i>hi</i>", Format: event.FormatHTML}, event.HTMLInject{HTML: "<i>hi</i>"}},
		{event.ImageResolved{ImagePath: "/a.png"}, event.ImageInject{ImagePath: "/a.png"}},
	}
	for _, tt := range tests {
		out, dispatched := runStage(s, event.New(7, tt.in))
		assert.Equal(t, tt.want, out.Type)
		require.Len(t, dispatched, 2)
		assert.Equal(t, event.KindMatchInjected, dispatched[0].Kind())
		assert.Equal(t, event.DiscardPrevious{MinimumSourceID: seq.Current()}, dispatched[1].Type)
	}

	out, dispatched := runStage(s, key(1, "a"))
	assert.Equal(t, event.KindKeyboard, out.Kind())
	assert.Empty(t, dispatched)
}

func TestMarkdown(t *testing.T) {
	s := NewMarkdown()

	out, _ := runStage(s, event.New(1, event.MarkdownInject{Markdown: "**bold** move"}))
	assert.Equal(t, event.HTMLInject{HTML: "<strong>bold</strong> move", FallbackText: "**bold** move"}, out.Type)

	out, _ = runStage(s, event.New(1, event.MarkdownInject{Markdown: "one\n\ntwo"}))
	assert.Equal(t, "<p>one</p>\n<p>two</p>", out.Type.(event.HTMLInject).HTML)
}

func TestDelay(t *testing.T) {
	var polls int
	keys := fakeModifiers{pressed: func() bool {
		polls++
		return polls < 4
	}}
	s := NewDelay(keys, DelayOptions{Poll: time.Millisecond, MaxWait: time.Second})

	out, _ := runStage(s, event.New(1, event.TextInject{Text: "x"}))
	assert.Equal(t, event.TextInject{Text: "x"}, out.Type)
	assert.Equal(t, 4, polls)

	polls = 0
	runStage(s, key(1, "a"))
	assert.Zero(t, polls, "only injections wait")
}

func TestDelay_GivesUp(t *testing.T) {
	keys := fakeModifiers{pressed: func() bool { return true }}
	s := NewDelay(keys, DelayOptions{Poll: time.Millisecond, MaxWait: 20 * time.Millisecond})

	start := time.Now()
	out, _ := runStage(s, event.New(1, event.TextInject{Text: "x"}))
	assert.Equal(t, event.KindTextInject, out.Kind())
	assert.Less(t, time.Since(start), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out = s.Next(ctx, event.New(1, event.Undo{}), func(event.Event) {})
	assert.Equal(t, event.KindUndo, out.Kind())
}
