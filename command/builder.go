package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/pkg/state"
)

// spec describes one catalog entry.
type spec struct {
	// args returns a pointer to a zero argument struct, or nil when the command takes none.
	args func() any
	// documentScoped commands act on the current document and are pointless without one.
	documentScoped bool
	validate       func(any) error
}

var catalog = map[string]spec{
	NameGetState: {},
	NameUndo:     {documentScoped: true},
	NameRedo:     {documentScoped: true},

	NameNewDocument:          {args: func() any { return &PathArgs{} }, validate: validatePath},
	NameOpenDocuments:        {args: func() any { return &PathsArgs{} }, validate: validatePaths},
	NameFocusDocument:        {args: func() any { return &PathArgs{} }, validate: validatePath},
	NameCloseDocument:        {args: func() any { return &PathArgs{} }, validate: validatePath},
	NameCloseCurrentDocument: {documentScoped: true},
	NameCloseAllDocuments:    {},
	NameCloseWithoutSaving:   {documentScoped: true},
	NameRequestExit:          {},
	NameCancelExit:           {},
	NameSave:                 {documentScoped: true},
	NameSaveAs:               {args: func() any { return &PathArgs{} }, documentScoped: true, validate: validatePath},
	NameSaveAll:              {},

	NameBeginExportAs:        {documentScoped: true},
	NameCancelExportAs:       {documentScoped: true},
	NameDoExport:             {documentScoped: true},
	NameAcknowledgeError:     {},

	NameImportFrames:         {args: func() any { return &PathsArgs{} }, documentScoped: true, validate: validatePaths},
	NameDeleteFrame:          {args: func() any { return &PathArgs{} }, documentScoped: true, validate: validatePath},
	NameBeginRelocateFrames:  {documentScoped: true},
	NameRelocateFrame:        {args: func() any { return &RelocateFrameArgs{} }, documentScoped: true, validate: validateRelocate},
	NameEndRelocateFrames:    {documentScoped: true},
	NameCancelRelocateFrames: {documentScoped: true},

	NameFocusContentTab: {args: func() any { return &FocusContentTabArgs{} }, documentScoped: true, validate: validateContentTab},
	NameClearSelection:  {documentScoped: true},
	NameSelectFrame:     {args: func() any { return &SelectFrameArgs{} }, documentScoped: true},
	NameSelectAnimation: {args: func() any { return &SelectAnimationArgs{} }, documentScoped: true},
	NameSelectKeyframe:  {args: func() any { return &SelectKeyframeArgs{} }, documentScoped: true, validate: validateKeyframe},
	NameSelectHitbox:    {args: func() any { return &SelectHitboxArgs{} }, documentScoped: true},
	NameSelectAll:       {documentScoped: true},
	NameSelectDirection: {args: func() any { return &SelectDirectionArgs{} }, documentScoped: true, validate: validateDirection},

	NameCut:             {documentScoped: true},
	NameCopy:            {documentScoped: true},
	NamePaste:           {documentScoped: true},
	NameDeleteSelection: {documentScoped: true},
	NameNudgeSelection:  {args: func() any { return &NudgeSelectionArgs{} }, documentScoped: true, validate: validateNudge},
	NameBrowseSelection: {args: func() any { return &BrowseSelectionArgs{} }, documentScoped: true, validate: validateBrowse},
	NameBrowseToStart:   {args: func() any { return &ShiftArgs{} }, documentScoped: true},
	NameBrowseToEnd:     {args: func() any { return &ShiftArgs{} }, documentScoped: true},

	NameBeginRenameSelection: {documentScoped: true},
	NameCreateAnimation:      {documentScoped: true},
	NameEditAnimation:        {args: func() any { return &NameArgs{} }, documentScoped: true, validate: validateName},
	NameRenameAnimation:      {args: func() any { return &RenameAnimationArgs{} }, documentScoped: true, validate: validateRename},
	NameDeleteAnimation:      {args: func() any { return &NameArgs{} }, documentScoped: true, validate: validateName},
	NameSetAnimationLooping:  {args: func() any { return &AnimationLoopingArgs{} }, documentScoped: true},
	NameEndRenameAnimation:   {args: func() any { return &NewNameArgs{} }, documentScoped: true, validate: validateNewName},
	NameEndRenameHitbox:      {args: func() any { return &NewNameArgs{} }, documentScoped: true, validate: validateNewName},
	NameCancelRename:         {documentScoped: true},

	NamePan:                {args: func() any { return &PanArgs{} }, documentScoped: true},
	NameCenterWorkbench:    {documentScoped: true},
	NameZoomInWorkbench:    {documentScoped: true},
	NameZoomOutWorkbench:   {documentScoped: true},
	NameResetWorkbenchZoom: {documentScoped: true},

	NameTick:                 {args: func() any { return &TickArgs{} }, documentScoped: true},
	NamePlay:                 {documentScoped: true},
	NamePause:                {documentScoped: true},
	NameScrubTimeline:        {args: func() any { return &ScrubTimelineArgs{} }, documentScoped: true},
	NameJumpToAnimationStart: {documentScoped: true},
	NameJumpToAnimationEnd:   {documentScoped: true},
	NameZoomInTimeline:       {documentScoped: true},
	NameZoomOutTimeline:      {documentScoped: true},
	NameResetTimelineZoom:    {documentScoped: true},
}

// Known reports whether name is in the catalog.
func Known(name string) bool {
	_, ok := catalog[name]
	return ok
}

// DocumentScoped reports whether the command only makes sense with a current document.
func DocumentScoped(name string) bool {
	return catalog[name].documentScoped
}

// Names lists every catalog command, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates a command from a name and raw JSON arguments, as received from the
// command line or another untyped caller. Unknown names, unknown argument fields and
// invalid values are rejected.
func Build(name string, rawArgs json.RawMessage) (Command, error) {
	entry, ok := catalog[name]
	if !ok {
		return Command{}, errors.UnknownCommand(name)
	}

	trimmed := bytes.TrimSpace(rawArgs)
	empty := len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}"))

	if entry.args == nil {
		if !empty {
			return Command{}, invalidArgs(name, "command takes no arguments")
		}
		return Command{Name: name}, nil
	}

	target := entry.args()
	if !empty {
		decoder := json.NewDecoder(bytes.NewReader(trimmed))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(target); err != nil {
			return Command{}, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid arguments").
				WithDetail("command", name)
		}
	}

	if entry.validate != nil {
		if err := entry.validate(target); err != nil {
			return Command{}, invalidArgs(name, err.Error())
		}
	}

	return Command{Name: name, Args: deref(target)}, nil
}

// Validate checks a command built in code against the catalog.
func Validate(c Command) error {
	if !Known(c.Name) {
		return errors.UnknownCommand(c.Name)
	}
	payload, err := c.Payload()
	if err != nil {
		return err
	}
	_, err = Build(c.Name, payload)
	return err
}

func invalidArgs(name, reason string) error {
	return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("invalid arguments for %s: %s", name, reason)).
		WithDetail("command", name)
}

// deref turns the decoded pointer back into the value type the constructors use.
func deref(v any) any {
	switch a := v.(type) {
	case *PathArgs:
		return *a
	case *PathsArgs:
		return *a
	case *FocusContentTabArgs:
		return *a
	case *SelectFrameArgs:
		return *a
	case *SelectAnimationArgs:
		return *a
	case *SelectKeyframeArgs:
		return *a
	case *SelectHitboxArgs:
		return *a
	case *NudgeSelectionArgs:
		return *a
	case *BrowseSelectionArgs:
		return *a
	case *ShiftArgs:
		return *a
	case *NameArgs:
		return *a
	case *RenameAnimationArgs:
		return *a
	case *SelectDirectionArgs:
		return *a
	case *NewNameArgs:
		return *a
	case *AnimationLoopingArgs:
		return *a
	case *RelocateFrameArgs:
		return *a
	case *PanArgs:
		return *a
	case *TickArgs:
		return *a
	case *ScrubTimelineArgs:
		return *a
	}
	return v
}

func validatePath(v any) error {
	if strings.TrimSpace(v.(*PathArgs).Path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

func validatePaths(v any) error {
	paths := v.(*PathsArgs).Paths
	if len(paths) == 0 {
		return fmt.Errorf("at least one path is required")
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("paths cannot contain empty entries")
		}
	}
	return nil
}

func validateName(v any) error {
	if v.(*NameArgs).Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

func validateRename(v any) error {
	a := v.(*RenameAnimationArgs)
	if a.OldName == "" || a.NewName == "" {
		return fmt.Errorf("oldName and newName are required")
	}
	return nil
}

func validateNewName(v any) error {
	if v.(*NewNameArgs).NewName == "" {
		return fmt.Errorf("newName cannot be empty")
	}
	return nil
}

func validateRelocate(v any) error {
	a := v.(*RelocateFrameArgs)
	if strings.TrimSpace(a.From) == "" || strings.TrimSpace(a.To) == "" {
		return fmt.Errorf("from and to are required")
	}
	return nil
}

func validateDirection(v any) error {
	if d := v.(*SelectDirectionArgs).Direction; d.Ordinal() == len(state.Directions) {
		return fmt.Errorf("unknown direction %q", d)
	}
	return nil
}

func validateContentTab(v any) error {
	switch v.(*FocusContentTabArgs).ContentTab {
	case state.ContentTabFrames, state.ContentTabAnimations:
		return nil
	}
	return fmt.Errorf("contentTab must be %q or %q", state.ContentTabFrames, state.ContentTabAnimations)
}

func validateKeyframe(v any) error {
	a := v.(*SelectKeyframeArgs)
	if a.Direction.Ordinal() == len(state.Directions) {
		return fmt.Errorf("unknown direction %q", a.Direction)
	}
	if a.Index < 0 {
		return fmt.Errorf("index cannot be negative")
	}
	return nil
}

func validateNudge(v any) error {
	if d := v.(*NudgeSelectionArgs).Direction; !d.Valid() {
		return fmt.Errorf("unknown direction %q", d)
	}
	return nil
}

func validateBrowse(v any) error {
	if d := v.(*BrowseSelectionArgs).Direction; !d.Valid() {
		return fmt.Errorf("unknown direction %q", d)
	}
	return nil
}
