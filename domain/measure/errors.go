package measure

import "errors"

var (
	ErrImageLoad          = errors.New("image load failed")
	ErrNoImage            = errors.New("no image loaded")
	ErrCalibrationMissing = errors.New("calibration missing")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidCalibration = errors.New("invalid calibration")
	ErrBufferFull         = errors.New("four points already recorded")
	ErrAwaitingReference  = errors.New("awaiting reference length")
	ErrDegenerateSegment  = errors.New("known segment has zero length")
)
