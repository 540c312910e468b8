// Package renderer holds the UI-observable state of a renderer window.
// Visual components read snapshots and subscribe through these services;
// none of them render anything.
package renderer
