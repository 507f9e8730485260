/*
go-bvision is a driver assist pipeline for a dashboard mounted camera.  Each
captured frame is run through an object detection model, the detections are
filtered by a fixed confidence policy and fed to a signal tracker which
watches for a traffic light turning from red to green while the vehicle is
stopped behind another.  When that happens an alert fires once.

A Session owns the pipeline on a single goroutine and hands draw batches and
alerts to sinks, such as the MJPEG annotator, websocket hub, alert tone and
alert journal.

See example/dashcam for a complete program.
*/
package bvision
