package api

// Version identifies the simulator build in responses and headers.
const Version = "1.0.0"
