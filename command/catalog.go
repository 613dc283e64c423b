package command

import "github.com/grovetools/sheetsync/pkg/state"

// Command names understood by the backend.
const (
	NameGetState = "get_state"

	NameUndo = "undo"
	NameRedo = "redo"

	NameNewDocument          = "new_document"
	NameOpenDocuments        = "open_documents"
	NameFocusDocument        = "focus_document"
	NameCloseDocument        = "close_document"
	NameCloseCurrentDocument = "close_current_document"
	NameCloseAllDocuments    = "close_all_documents"
	NameCloseWithoutSaving   = "close_without_saving"
	NameRequestExit          = "request_exit"
	NameCancelExit           = "cancel_exit"
	NameSave                 = "save"
	NameSaveAs               = "save_as"
	NameSaveAll              = "save_all"

	NameBeginExportAs        = "begin_export_as"
	NameCancelExportAs       = "cancel_export_as"
	NameDoExport             = "do_export"
	NameAcknowledgeError     = "acknowledge_error"

	NameImportFrames         = "import_frames"
	NameDeleteFrame          = "delete_frame"
	NameBeginRelocateFrames  = "begin_relocate_frames"
	NameRelocateFrame        = "relocate_frame"
	NameEndRelocateFrames    = "end_relocate_frames"
	NameCancelRelocateFrames = "cancel_relocate_frames"

	NameFocusContentTab = "focus_content_tab"
	NameClearSelection  = "clear_selection"
	NameSelectFrame     = "select_frame"
	NameSelectAnimation = "select_animation"
	NameSelectKeyframe  = "select_keyframe"
	NameSelectHitbox    = "select_hitbox"
	NameSelectAll       = "select_all"
	NameSelectDirection = "select_direction"

	NameCut             = "cut"
	NameCopy            = "copy"
	NamePaste           = "paste"
	NameDeleteSelection = "delete_selection"
	NameNudgeSelection  = "nudge_selection"
	NameBrowseSelection = "browse_selection"
	NameBrowseToStart   = "browse_to_start"
	NameBrowseToEnd     = "browse_to_end"

	NameBeginRenameSelection = "begin_rename_selection"
	NameCreateAnimation      = "create_animation"
	NameEditAnimation        = "edit_animation"
	NameRenameAnimation      = "rename_animation"
	NameDeleteAnimation      = "delete_animation"
	NameSetAnimationLooping  = "set_animation_looping"
	NameEndRenameAnimation   = "end_rename_animation"
	NameEndRenameHitbox      = "end_rename_hitbox"
	NameCancelRename         = "cancel_rename"

	NamePan                = "pan"
	NameCenterWorkbench    = "center_workbench"
	NameZoomInWorkbench    = "zoom_in_workbench"
	NameZoomOutWorkbench   = "zoom_out_workbench"
	NameResetWorkbenchZoom = "reset_workbench_zoom"

	NameTick                 = "tick"
	NamePlay                 = "play"
	NamePause                = "pause"
	NameScrubTimeline        = "scrub_timeline"
	NameJumpToAnimationStart = "jump_to_animation_start"
	NameJumpToAnimationEnd   = "jump_to_animation_end"
	NameZoomInTimeline       = "zoom_in_timeline"
	NameZoomOutTimeline      = "zoom_out_timeline"
	NameResetTimelineZoom    = "reset_timeline_zoom"
)

// Argument shapes. Field names are the backend's camelCase wire names.

type FocusContentTabArgs struct {
	ContentTab state.ContentTab `json:"contentTab"`
}

type SelectFrameArgs struct {
	Path  string `json:"path"`
	Shift bool   `json:"shift"`
	Ctrl  bool   `json:"ctrl"`
}

type SelectAnimationArgs struct {
	Name  string `json:"name"`
	Shift bool   `json:"shift"`
	Ctrl  bool   `json:"ctrl"`
}

type SelectKeyframeArgs struct {
	Direction state.Direction `json:"direction"`
	Index     int             `json:"index"`
	Shift     bool            `json:"shift"`
	Ctrl      bool            `json:"ctrl"`
}

type SelectHitboxArgs struct {
	Name  string `json:"name"`
	Shift bool   `json:"shift"`
	Ctrl  bool   `json:"ctrl"`
}

type SelectDirectionArgs struct {
	Direction state.Direction `json:"direction"`
}

type PanArgs struct {
	Delta [2]float64 `json:"delta"`
}

type NameArgs struct {
	Name string `json:"name"`
}

type RenameAnimationArgs struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

// NewNameArgs finishes a rename started by begin_rename_selection.
type NewNameArgs struct {
	NewName string `json:"newName"`
}

type AnimationLoopingArgs struct {
	IsLooping bool `json:"isLooping"`
}

// RelocateFrameArgs points every use of the frame at From to the file at To.
type RelocateFrameArgs struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type TickArgs struct {
	DeltaTimeMillis float64 `json:"deltaTimeMillis"`
}

type ScrubTimelineArgs struct {
	TimeMillis float64 `json:"timeMillis"`
}

type PathArgs struct {
	Path string `json:"path"`
}

type PathsArgs struct {
	Paths []string `json:"paths"`
}

type NudgeSelectionArgs struct {
	Direction Direction `json:"direction"`
	Large     bool      `json:"large"`
}

type BrowseSelectionArgs struct {
	Direction Direction `json:"direction"`
	Shift     bool      `json:"shift"`
}

type ShiftArgs struct {
	Shift bool `json:"shift"`
}

func bare(name string) Command { return Command{Name: name} }

func GetState() Command { return bare(NameGetState) }
func Undo() Command     { return bare(NameUndo) }
func Redo() Command     { return bare(NameRedo) }

func NewDocument(path string) Command {
	return Command{Name: NameNewDocument, Args: PathArgs{Path: path}}
}

func OpenDocuments(paths []string) Command {
	return Command{Name: NameOpenDocuments, Args: PathsArgs{Paths: paths}}
}

func FocusDocument(path string) Command {
	return Command{Name: NameFocusDocument, Args: PathArgs{Path: path}}
}

func CloseDocument(path string) Command {
	return Command{Name: NameCloseDocument, Args: PathArgs{Path: path}}
}

func CloseCurrentDocument() Command { return bare(NameCloseCurrentDocument) }
func CloseAllDocuments() Command    { return bare(NameCloseAllDocuments) }
func CloseWithoutSaving() Command   { return bare(NameCloseWithoutSaving) }
func RequestExit() Command          { return bare(NameRequestExit) }
func CancelExit() Command           { return bare(NameCancelExit) }
func Save() Command                 { return bare(NameSave) }

func SaveAs(path string) Command {
	return Command{Name: NameSaveAs, Args: PathArgs{Path: path}}
}

func SaveAll() Command          { return bare(NameSaveAll) }
func BeginExportAs() Command    { return bare(NameBeginExportAs) }
func CancelExportAs() Command   { return bare(NameCancelExportAs) }
func DoExport() Command         { return bare(NameDoExport) }
func AcknowledgeError() Command { return bare(NameAcknowledgeError) }

func ImportFrames(paths []string) Command {
	return Command{Name: NameImportFrames, Args: PathsArgs{Paths: paths}}
}

func DeleteFrame(path string) Command {
	return Command{Name: NameDeleteFrame, Args: PathArgs{Path: path}}
}

func BeginRelocateFrames() Command { return bare(NameBeginRelocateFrames) }

func RelocateFrame(from, to string) Command {
	return Command{Name: NameRelocateFrame, Args: RelocateFrameArgs{From: from, To: to}}
}

func EndRelocateFrames() Command    { return bare(NameEndRelocateFrames) }
func CancelRelocateFrames() Command { return bare(NameCancelRelocateFrames) }

func FocusContentTab(tab state.ContentTab) Command {
	return Command{Name: NameFocusContentTab, Args: FocusContentTabArgs{ContentTab: tab}}
}

func ClearSelection() Command { return bare(NameClearSelection) }

func SelectFrame(path string, shift, ctrl bool) Command {
	return Command{Name: NameSelectFrame, Args: SelectFrameArgs{Path: path, Shift: shift, Ctrl: ctrl}}
}

func SelectAnimation(name string, shift, ctrl bool) Command {
	return Command{Name: NameSelectAnimation, Args: SelectAnimationArgs{Name: name, Shift: shift, Ctrl: ctrl}}
}

func SelectKeyframe(direction state.Direction, index int, shift, ctrl bool) Command {
	return Command{Name: NameSelectKeyframe, Args: SelectKeyframeArgs{Direction: direction, Index: index, Shift: shift, Ctrl: ctrl}}
}

func SelectHitbox(name string, shift, ctrl bool) Command {
	return Command{Name: NameSelectHitbox, Args: SelectHitboxArgs{Name: name, Shift: shift, Ctrl: ctrl}}
}

func SelectDirection(direction state.Direction) Command {
	return Command{Name: NameSelectDirection, Args: SelectDirectionArgs{Direction: direction}}
}

func SelectAll() Command       { return bare(NameSelectAll) }
func Cut() Command             { return bare(NameCut) }
func Copy() Command            { return bare(NameCopy) }
func Paste() Command           { return bare(NamePaste) }
func DeleteSelection() Command { return bare(NameDeleteSelection) }

func NudgeSelection(direction Direction, large bool) Command {
	return Command{Name: NameNudgeSelection, Args: NudgeSelectionArgs{Direction: direction, Large: large}}
}

func BrowseSelection(direction Direction, shift bool) Command {
	return Command{Name: NameBrowseSelection, Args: BrowseSelectionArgs{Direction: direction, Shift: shift}}
}

func BrowseToStart(shift bool) Command {
	return Command{Name: NameBrowseToStart, Args: ShiftArgs{Shift: shift}}
}

func BrowseToEnd(shift bool) Command {
	return Command{Name: NameBrowseToEnd, Args: ShiftArgs{Shift: shift}}
}

func BeginRenameSelection() Command { return bare(NameBeginRenameSelection) }
func CreateAnimation() Command      { return bare(NameCreateAnimation) }

func EditAnimation(name string) Command {
	return Command{Name: NameEditAnimation, Args: NameArgs{Name: name}}
}

func RenameAnimation(oldName, newName string) Command {
	return Command{Name: NameRenameAnimation, Args: RenameAnimationArgs{OldName: oldName, NewName: newName}}
}

func DeleteAnimation(name string) Command {
	return Command{Name: NameDeleteAnimation, Args: NameArgs{Name: name}}
}

func SetAnimationLooping(looping bool) Command {
	return Command{Name: NameSetAnimationLooping, Args: AnimationLoopingArgs{IsLooping: looping}}
}

func EndRenameAnimation(newName string) Command {
	return Command{Name: NameEndRenameAnimation, Args: NewNameArgs{NewName: newName}}
}

func EndRenameHitbox(newName string) Command {
	return Command{Name: NameEndRenameHitbox, Args: NewNameArgs{NewName: newName}}
}

func CancelRename() Command { return bare(NameCancelRename) }

func Pan(dx, dy float64) Command {
	return Command{Name: NamePan, Args: PanArgs{Delta: [2]float64{dx, dy}}}
}

func CenterWorkbench() Command    { return bare(NameCenterWorkbench) }
func ZoomInWorkbench() Command    { return bare(NameZoomInWorkbench) }
func ZoomOutWorkbench() Command   { return bare(NameZoomOutWorkbench) }
func ResetWorkbenchZoom() Command { return bare(NameResetWorkbenchZoom) }

func Tick(deltaMillis float64) Command {
	return Command{Name: NameTick, Args: TickArgs{DeltaTimeMillis: deltaMillis}}
}

func Play() Command  { return bare(NamePlay) }
func Pause() Command { return bare(NamePause) }

func ScrubTimeline(timeMillis float64) Command {
	return Command{Name: NameScrubTimeline, Args: ScrubTimelineArgs{TimeMillis: timeMillis}}
}

func JumpToAnimationStart() Command { return bare(NameJumpToAnimationStart) }
func JumpToAnimationEnd() Command   { return bare(NameJumpToAnimationEnd) }
func ZoomInTimeline() Command       { return bare(NameZoomInTimeline) }
func ZoomOutTimeline() Command      { return bare(NameZoomOutTimeline) }
func ResetTimelineZoom() Command    { return bare(NameResetTimelineZoom) }
