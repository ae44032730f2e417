// Package generation is the boundary to the external image generation
// collaborator.
//
// # Requests
//
// A Request carries an operation, the input images as decoded data URLs, a
// textual directive and the scene settings. BaseModelRequest, GarmentRequest
// and SceneRequest build the directive for each operation from the scene
// settings and the ordered layer names.
//
// # Transport
//
// Generator is the seam the studio session calls. HTTPGenerator posts the
// request as JSON to a configured endpoint and expects a single image back.
// Every failure, including a non-2xx status, a rate limit or an empty image,
// is reported as faults.ErrGeneration. Nothing is retried.
//
// Instrument wraps any Generator with request counts and latency metrics.
//
// HTTPFetcher inlines garment images that a catalog references by URL.
package generation
