package tf

import (
	"sync"

	"github.com/edwinhayes/ropose/msgs/geometry_msgs"
	"github.com/edwinhayes/ropose/ros"
	"github.com/pkg/errors"
)

//ErrUnavailable is the sentinel wrapped by every failed lookup. Check it
//with errors.Is to distinguish "no data yet" from programming errors.
var ErrUnavailable = errors.New("transform unavailable")

type edge struct {
	parent string
	tr     Transform
	stamp  ros.Time
	static bool
}

//Buffer is a tree of frames. Every child frame carries exactly one edge to
//its parent holding the latest transform seen for that pair. Non static
//edges older than the cache duration are treated as absent; a zero cache
//duration disables expiry.
type Buffer struct {
	mutex     sync.RWMutex
	parents   map[string]edge
	frames    map[string]bool
	cacheTime ros.Duration
}

//NewBuffer creates an empty buffer with the given cache duration.
func NewBuffer(cacheTime ros.Duration) *Buffer {
	return &Buffer{
		parents:   make(map[string]edge),
		frames:    make(map[string]bool),
		cacheTime: cacheTime,
	}
}

//Set upserts the parent edge of child. The transform is the pose of child
//expressed in parent. Edges from a frame to itself are ignored.
func (b *Buffer) Set(parent, child string, tr geometry_msgs.Transform, stamp ros.Time, static bool) {
	if parent == "" || child == "" || parent == child {
		return
	}
	b.mutex.Lock()
	b.parents[child] = edge{parent: parent, tr: FromMsg(tr), stamp: stamp, static: static}
	b.frames[parent] = true
	b.frames[child] = true
	b.mutex.Unlock()
}

func (b *Buffer) expired(e edge, now ros.Time) bool {
	if e.static || b.cacheTime.IsZero() {
		return false
	}
	if now.Cmp(e.stamp) <= 0 {
		return false
	}
	age := now.Diff(e.stamp)
	return age.Cmp(b.cacheTime) > 0
}

//LookupLatest returns the pose of body expressed in fixed, composed from
//the latest edges along the path through the frames' lowest common
//ancestor. It either returns a complete transform or an error wrapping
//ErrUnavailable; it never returns a partial result.
func (b *Buffer) LookupLatest(fixed, body string) (geometry_msgs.Transform, error) {
	if fixed == body {
		return Identity().ToMsg(), nil
	}
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	now := ros.Now()
	expired := false

	// Climb from body to the root, recording the pose of body in every
	// ancestor passed. The visited set terminates malformed cyclic input.
	bodyUp := map[string]Transform{body: Identity()}
	visited := map[string]bool{body: true}
	acc := Identity()
	cur := body
	for {
		e, ok := b.parents[cur]
		if !ok {
			break
		}
		if b.expired(e, now) {
			expired = true
			break
		}
		acc = e.tr.Mul(acc)
		cur = e.parent
		if visited[cur] {
			break
		}
		visited[cur] = true
		bodyUp[cur] = acc
	}

	if tr, ok := bodyUp[fixed]; ok {
		return tr.ToMsg(), nil
	}

	// Climb from fixed until a frame on body's chain appears, then compose
	// inverse(ancestor←fixed) with (ancestor←body).
	fvisited := map[string]bool{fixed: true}
	facc := Identity()
	cur = fixed
	for {
		e, ok := b.parents[cur]
		if !ok {
			break
		}
		if b.expired(e, now) {
			expired = true
			break
		}
		facc = e.tr.Mul(facc)
		cur = e.parent
		if up, ok := bodyUp[cur]; ok {
			return facc.Invert().Mul(up).ToMsg(), nil
		}
		if fvisited[cur] {
			break
		}
		fvisited[cur] = true
	}

	if expired {
		return geometry_msgs.Transform{}, errors.Wrapf(ErrUnavailable,
			"stale transform between %s and %s", fixed, body)
	}
	if !b.frames[fixed] {
		return geometry_msgs.Transform{}, errors.Wrapf(ErrUnavailable, "unknown frame %s", fixed)
	}
	if !b.frames[body] {
		return geometry_msgs.Transform{}, errors.Wrapf(ErrUnavailable, "unknown frame %s", body)
	}
	return geometry_msgs.Transform{}, errors.Wrapf(ErrUnavailable,
		"frames %s and %s are not connected", fixed, body)
}
