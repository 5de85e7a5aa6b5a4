// Package gui is a raylib window onto a sim.Batch: teal bobs sized by the
// square root of their mass, two arms per pendulum and a tip trail whose
// alpha follows ring.FadeWeight.
//
// The window itself needs cgo and is compiled only with the gui build tag
// (go build -tags gui). Without it Run returns ErrUnavailable. Scene
// building, key actions and the HUD text are tag free so they are tested
// on every build.
package gui
