// Copyright 2024 diatide authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package diatide uploads the glucose readings from a Diasend spreadsheet export to a Tidepool account.

diatide reads the blood glucose meter readings (first worksheet) and the continuous glucose monitor
readings (second worksheet) from a Diasend .xls/.xlsx export or from a Google Sheets copy of the export,
logs in to Tidepool and uploads each reading as a 'cbg' or 'smbg' record.

diatide supports the following commands:

  - upload, to upload a Diasend export to Tidepool (the default command)
  - extract, to extract the readings from a Diasend export to a TSV file
  - groups, to verify the Tidepool credentials and list the account groups
  - authorise, to authorise access to a Google Sheets copy of a Diasend export
  - version, to display the current version
*/
package diatide
