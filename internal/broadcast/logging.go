package broadcast

import "inkwell/internal/logging"

var log = logging.Logger("broadcast")
