// Package report implements the renderer side of the report pipeline:
// deterministic transformation of a control record list into a fixed
// layout, multi-page PDF document with a computed summary.
//
// Rendering is strictly sequential: records are stable-sorted by their
// dotted numeric identifier, the company name and average applicable
// score are derived, and each record is laid out as a block of five
// labelled, word-wrapped lines followed by a separator rule. The layout
// engine checks the vertical cursor before every physical line and opens
// a fresh page when the bottom margin is reached. Data anomalies degrade
// to placeholders; rendering never fails on malformed record content.
package report
