package polyhedron

// Callback receives topology events while a mutation is in progress. Events
// fire synchronously; handlers must not mutate the polyhedron.
type Callback interface {
	FaceWasCreated(face *Face)
	FaceWillBeDeleted(face *Face)
	FacesWillBeMerged(remaining, toDelete *Face)
	FaceWasSplit(original, clone *Face)
	FaceWasFlipped(face *Face)
	VertexWasAdded(vertex *Vertex)
	VertexWillBeRemoved(vertex *Vertex)
}

// NopCallback ignores every event. Embed it to implement a subset.
type NopCallback struct{}

func (NopCallback) FaceWasCreated(*Face)           {}
func (NopCallback) FaceWillBeDeleted(*Face)        {}
func (NopCallback) FacesWillBeMerged(*Face, *Face) {}
func (NopCallback) FaceWasSplit(*Face, *Face)      {}
func (NopCallback) FaceWasFlipped(*Face)           {}
func (NopCallback) VertexWasAdded(*Vertex)         {}
func (NopCallback) VertexWillBeRemoved(*Vertex)    {}

func orNop(cb Callback) Callback {
	if cb == nil {
		return NopCallback{}
	}
	return cb
}
