package feed

import "time"

// nowFunc is replaceable in tests so range validity checks can pin "today".
var nowFunc = time.Now
