// Package render drives one remote render job from submission to a terminal
// state.
//
// The poller submits the payload, accepts the job id under any of its wire
// aliases, then polls the project's internal status feed on a fixed interval
// until the job reports a media URL at full progress, carries an explicit
// error, or the overall deadline passes. The feed occasionally omits a
// just-created job id; the poller then falls back to the newest entry by
// creation time. Clock and sleep are injectable so tests run without waiting.
package render
