// Package gaps measures how well a pool of volunteers covers the skills a
// set of tasks requires.
//
// Required counts record how many tasks need each skill; available counts
// record how many volunteers have it. A gap is the shortfall for one skill
// and coverage is the share of required slots that could be filled.
package gaps
