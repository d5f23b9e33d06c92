package main

// General API documentation for swaggo. Build with -tags=swagger to serve it.
//
// @title           zulubridge API
// @version         1.0
// @description     HTTP control surface for an optical-drive emulator.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
