// Package sign owns the connection to one Alpha sign and turns high-level
// requests into framed packets.
//
// A Client opens its transport lazily, serialises every packet through a
// mutex, and synchronises the sign clock (time, weekday, date, 24-hour
// format) the first time it connects and again after MarkClockStale. It
// does not retry: a failed write closes the transport and the next
// command opens a fresh one.
//
// Message and Compose reproduce the parameter model of the HTTP and MQTT
// front ends: text plus optional color, effect, speed, font, line and
// beep count.
package sign
