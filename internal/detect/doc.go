// Package detect wraps the external inference collaborators: a YOLO-style
// whole-frame behavior detector and a face-mesh landmark extractor, both
// driven through OpenCV's DNN module. The monitor treats both as opaque
// blocking calls; everything downstream consumes only Detection and Point.
package detect
