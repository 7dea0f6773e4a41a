/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cli

import (
	"fmt"
	"io"
)

// ShowHelp writes the usage text to w.
func ShowHelp(w io.Writer) {
	fmt.Fprint(w, `companion: manage the companion device list
Usage:
  companion [options] <command> [arguments]

Options:
  -server string     companiond base URL (default $COMPANION_SERVER or "http://localhost:8088")
  -api-key string    API key sent as X-API-Key (default $COMPANION_API_KEY)
  -output string     table or json (default "table")
  -version           print the version and exit
  -debug             log local store activity to stderr
  -help              show this help message

Commands:
  list                      show the device list
  add -name N -code C       add a device, -app sets the app tag
  edit <index> [flags]      change -name, -code, -app or -installed
  rm <index>                remove a device
  mv <from> <to>            move a device to a new position
  select <index|none>       select a device or clear the selection
  status <index>            fetch the device's current state
  switch <index> on|off     set the device switch
  slider <index> <value>    set the device slider
  update <index>            ask the device to report its state
  reset <index>             reset device settings and show the new state
  probe <index>             ask the agent which app it runs
  push                      send the list to the other surface
  sessions                  show open agent requests
  stats                     show installed and total device counts
  export [-file F] [-legacy]        print a sync payload built from a saved list
  apply [-file F] <payload|->       apply a sync payload to a saved list

Examples:
  companion add -name Kitchen -code abc123
  companion switch 0 on
  companion -output json list
  companion export -file /var/lib/companion/devices.json -legacy > list.txt
  cat list.txt | companion apply -file ./devices.json -
`)
}
