// Package graph defines the scene graph for brushwork.
// The scene graph is an immutable DAG of convex brush primitives,
// transforms, groups and CSG operations that describes a brush scene.
package graph
