package version

import (
	"fmt"
	"strconv"
	"time"
)

// Version is the application version. Can be overridden at build time via:
//
//	go build -ldflags "-X github.com/watermartph/watermart/internal/version.Version=1.2.3"
var Version = "1.0"

// RepoURL is the project repository URL. Can be overridden at build time via:
//
//	go build -ldflags "-X github.com/watermartph/watermart/internal/version.RepoURL=https://github.com/yourfork/watermart"
var RepoURL = "https://github.com/watermartph/watermart"

// Banner prints identifying information about the server.
func Banner() string {
	y := strconv.Itoa(time.Now().Year())
	copyright := "Copyright 2025-" + y + " WaterMart. All rights reserved."

	return fmt.Sprintf("%s\nWaterMart (v%s)\n%s\n", product(), Version, copyright)
}

func product() string {
	// http://patorjk.com/software/taag/#p=display&f=Standard&t=WaterMart
	const s = `
 __        __    _            __  __            _
 \ \      / /_ _| |_ ___ _ __|  \/  | __ _ _ __| |_
  \ \ /\ / / _` + "`" + ` | __/ _ \ '__| |\/| |/ _` + "`" + ` | '__| __|
   \ V  V / (_| | ||  __/ |  | |  | | (_| | |  | |_
    \_/\_/ \__,_|\__\___|_|  |_|  |_|\__,_|_|   \__|
`
	return s
}
