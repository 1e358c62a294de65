package memory

import "errors"

var errSlowSubscriber = errors.New("subscriber fell behind")
