// Package storage provides JSON-based persistence for event snapshots.
//
// Snapshots record which events were listed on the previous run so that only newly
// listed events are reported. Each source page gets its own file
// (snapshot_<source>.json) and the default file is snapshot.json.
// The default storage location is ~/.local/share/citycast-events/.
package storage
