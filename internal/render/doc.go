// Package render writes the divergence animation as numbered PNG frames.
//
// Frame i shows both trajectories from sample 0 through i inside a box fitted
// to the first trajectory, with the camera at a fixed elevation and an
// azimuth of i degrees. Files are named <prefix>_<i>.png with i padded to
// five digits, so a directory listing sorts in playback order.
package render
