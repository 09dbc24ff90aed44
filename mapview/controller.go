package mapview

import (
	"time"

	"github.com/sirupsen/logrus"

	"fortmap.io/FortMapServer/camera"
	"fortmap.io/FortMapServer/castles"
)

var log = logrus.StandardLogger()

// SettleDelay is how long a camera transition is considered in flight.
// Marker events arriving within it are echoes of the animation, not the
// user, and are dropped.
var SettleDelay = 300 * time.Millisecond

// Mode is the stable half of the interaction state
type Mode int

const (
	// ModeOverview shows the map with nothing selected
	ModeOverview Mode = iota
	// ModeFocused has one castle selected and a camera to return to
	ModeFocused
)

func (m Mode) String() string {
	switch m {
	case ModeOverview:
		return "overview"
	case ModeFocused:
		return "focused"
	}
	return "unknown"
}

// Phase is the transient half: which camera transition is settling
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSelecting
	PhaseDeselecting
	PhaseLocating
	PhaseResetting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSelecting:
		return "selecting"
	case PhaseDeselecting:
		return "deselecting"
	case PhaseLocating:
		return "locating"
	case PhaseResetting:
		return "resetting"
	}
	return "unknown"
}

// Controller drives one session's map interaction. All handling runs on
// the session loop, the public methods only post events onto it, so the
// state needs no locks.
type Controller struct {
	repo     *castles.Repository
	markers  *Synchronizer
	renderer Renderer

	post     func(func()) bool
	schedule func(time.Duration, func())

	mode         Mode
	phase        Phase
	selected     castles.POI
	saved        camera.Region
	lastViewport camera.Region
	mapType      MapType
	overview     camera.Region
	gen          uint64
}

// NewController creates a controller in overview. post is the session's
// serialized executor, every event handler runs through it.
func NewController(repo *castles.Repository, markers *Synchronizer, renderer Renderer, overview camera.Region, post func(func()) bool) *Controller {
	return &Controller{
		repo:     repo,
		markers:  markers,
		renderer: renderer,
		post:     post,
		schedule: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
		mode:         ModeOverview,
		phase:        PhaseIdle,
		mapType:      MapTypeStandard,
		overview:     overview,
		lastViewport: overview,
	}
}

// Select asks to focus one castle
func (c *Controller) Select(id string) {
	c.post(func() { c.handleSelect(id) })
}

// Deselect asks to drop the focused castle and restore the camera
func (c *Controller) Deselect() {
	c.post(c.handleDeselect)
}

// TapEmptyArea is a tap outside any marker, it deselects
func (c *Controller) TapEmptyArea() {
	c.post(c.handleTapEmpty)
}

// RequestReset asks for the default overview, it applies in any state
func (c *Controller) RequestReset() {
	c.post(c.handleReset)
}

// CenterOn moves the camera to a location, keeping any selection
func (c *Controller) CenterOn(p camera.Point) {
	c.post(func() { c.handleCenterOn(p) })
}

// SetMapType switches the base layer without touching the camera
func (c *Controller) SetMapType(t MapType) {
	c.post(func() { c.handleMapType(t) })
}

// ViewportChanged records the region the renderer currently shows
func (c *Controller) ViewportChanged(r camera.Region) {
	c.post(func() { c.handleViewport(r) })
}

// Mode returns the stable state. Loop-confined, like all reads.
func (c *Controller) Mode() Mode { return c.mode }

// Phase returns the transient state
func (c *Controller) Phase() Phase { return c.phase }

// Selected returns the focused castle, if any
func (c *Controller) Selected() (castles.POI, bool) {
	if c.mode != ModeFocused {
		return castles.POI{}, false
	}
	return c.selected, true
}

// SavedCamera returns the camera a deselect would restore. It is set
// exactly while a castle is focused.
func (c *Controller) SavedCamera() (camera.Region, bool) {
	if c.mode != ModeFocused {
		return camera.Region{}, false
	}
	return c.saved, true
}

// CurrentMapType returns the base layer
func (c *Controller) CurrentMapType() MapType { return c.mapType }

func (c *Controller) handleSelect(id string) {
	if c.phase != PhaseIdle {
		eventsSuppressed.Inc()
		log.Debug("select dropped while ", c.phase)
		return
	}
	poi, ok := c.repo.Get(id)
	if !ok {
		log.Warn("select for unknown castle ", id)
		return
	}
	if c.mode == ModeFocused && c.selected.ID == id {
		return
	}
	if c.mode == ModeOverview {
		// only the first select of an episode captures the return camera
		c.saved = c.lastViewport
	}
	c.mode = ModeFocused
	c.selected = poi
	c.begin(PhaseSelecting)

	if m := c.markers.MarkerByID(id); m != nil {
		c.renderer.FocusMarker(m)
	}
	c.renderer.SetCamera(camera.Around(camera.Point{poi.Lng, poi.Lat}, camera.FocusSpan), true)
}

func (c *Controller) handleDeselect() {
	if c.phase != PhaseIdle {
		eventsSuppressed.Inc()
		log.Debug("deselect dropped while ", c.phase)
		return
	}
	if c.mode != ModeFocused {
		return
	}
	restore := c.saved
	c.mode = ModeOverview
	c.selected = castles.POI{}
	c.saved = camera.Region{}
	c.begin(PhaseDeselecting)

	c.renderer.ClearFocus()
	c.renderer.SetCamera(restore, true)
}

func (c *Controller) handleTapEmpty() {
	c.handleDeselect()
}

// handleReset applies even while another transition is settling: the user
// explicitly asked for the overview, nothing may shadow that.
func (c *Controller) handleReset() {
	wasFocused := c.mode == ModeFocused
	c.mode = ModeOverview
	c.selected = castles.POI{}
	c.saved = camera.Region{}
	c.begin(PhaseResetting)

	if wasFocused {
		c.renderer.ClearFocus()
	}
	c.renderer.SetCamera(c.overview, true)
}

// handleCenterOn applies in any state and leaves selection and saved
// camera alone, so a later deselect still returns where it should
func (c *Controller) handleCenterOn(p camera.Point) {
	if !p.IsValid() {
		log.Warn("center on invalid location ", p)
		return
	}
	c.begin(PhaseLocating)
	c.renderer.SetCamera(camera.Around(p, camera.LocateSpan), true)
}

func (c *Controller) handleMapType(t MapType) {
	if _, ok := ParseMapType(string(t)); !ok {
		log.Warn("unknown map type ", t)
		return
	}
	if t == c.mapType {
		return
	}
	c.mapType = t
	c.renderer.SetMapType(t)
}

func (c *Controller) handleViewport(r camera.Region) {
	if !r.IsValid() {
		return
	}
	c.lastViewport = r
}

// begin starts a camera transition. Every transition schedules its own
// settle and a newer transition makes older settles stale, so the busy
// phase is always released by the transition actually in flight.
func (c *Controller) begin(p Phase) {
	c.phase = p
	c.gen++
	gen := c.gen
	transitionsTotal.Inc()
	c.schedule(SettleDelay, func() {
		c.post(func() { c.settle(gen) })
	})
}

func (c *Controller) settle(gen uint64) {
	if gen != c.gen {
		settlesSuperseded.Inc()
		return
	}
	c.phase = PhaseIdle
}
